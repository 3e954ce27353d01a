// Package memory provides process-local repositories with the same
// semantics as the Postgres ones, including versioned saves.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/postboard/internal/domain/entity"
	"github.com/oksasatya/postboard/internal/domain/repository"
)

type PostRepository struct {
	mu    sync.RWMutex
	posts map[string]*entity.Post
	now   func() time.Time
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]*entity.Post), now: time.Now}
}

func (r *PostRepository) Insert(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = r.now().UTC()
	p.Version = 1
	r.posts[p.ID] = clonePost(p)
	return nil
}

func (r *PostRepository) Get(_ context.Context, id string) (*entity.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *PostRepository) ListAll(_ context.Context) ([]*entity.Post, error) {
	r.mu.RLock()
	out := make([]*entity.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, clonePost(p))
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PostRepository) Save(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.posts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Version != p.Version {
		return repository.ErrConflict
	}
	next := clonePost(p)
	next.UserID, next.Name, next.Avatar, next.CreatedAt = cur.UserID, cur.Name, cur.Avatar, cur.CreatedAt
	next.Version = cur.Version + 1
	r.posts[p.ID] = next
	p.Version = next.Version
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func clonePost(p *entity.Post) *entity.Post {
	cp := *p
	cp.Comments = append(entity.Comments{}, p.Comments...)
	cp.Likes = append(entity.Likes{}, p.Likes...)
	return &cp
}

var _ repository.PostRepository = (*PostRepository)(nil)
