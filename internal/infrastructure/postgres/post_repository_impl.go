package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/postboard/internal/domain/entity"
	"github.com/oksasatya/postboard/internal/domain/repository"
)

// PostRepository stores each post as one row; comments and likes are JSONB
// documents on that row so a save is a single conditional UPDATE.
type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const selectPost = `
	SELECT id, user_id, text, name, avatar, comments, likes, version, created_at
	FROM posts`

func (r *PostRepository) Insert(ctx context.Context, p *entity.Post) error {
	comments, likes, err := marshalCollections(p)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (user_id, text, name, avatar, comments, likes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at
	`, p.UserID, p.Text, p.Name, p.Avatar, comments, likes)
	if err := row.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (*entity.Post, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	p, err := scanPost(r.pool.QueryRow(ctx, selectPost+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (r *PostRepository) ListAll(ctx context.Context) ([]*entity.Post, error) {
	rows, err := r.pool.Query(ctx, selectPost+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*entity.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Save(ctx context.Context, p *entity.Post) error {
	if !validID(p.ID) {
		return repository.ErrNotFound
	}
	comments, likes, err := marshalCollections(p)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET text = $1, comments = $2, likes = $3, version = version + 1
		WHERE id = $4 AND version = $5
	`, p.Text, comments, likes, p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
			return fmt.Errorf("save post: %w", err)
		}
		if exists {
			return repository.ErrConflict
		}
		return repository.ErrNotFound
	}
	p.Version++
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	var comments, likes []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar,
		&comments, &likes, &p.Version, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	p.Comments = entity.Comments{}
	p.Likes = entity.Likes{}
	if err := json.Unmarshal(comments, &p.Comments); err != nil {
		return nil, fmt.Errorf("decode comments of post %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(likes, &p.Likes); err != nil {
		return nil, fmt.Errorf("decode likes of post %s: %w", p.ID, err)
	}
	return p, nil
}

func marshalCollections(p *entity.Post) ([]byte, []byte, error) {
	cs := p.Comments
	if cs == nil {
		cs = entity.Comments{}
	}
	ls := p.Likes
	if ls == nil {
		ls = entity.Likes{}
	}
	comments, err := json.Marshal(cs)
	if err != nil {
		return nil, nil, fmt.Errorf("encode comments: %w", err)
	}
	likes, err := json.Marshal(ls)
	if err != nil {
		return nil, nil, fmt.Errorf("encode likes: %w", err)
	}
	return comments, likes, nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
