// Package cache decorates repositories with a Redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/postboard/internal/domain/entity"
	"github.com/oksasatya/postboard/internal/domain/repository"
	"github.com/oksasatya/postboard/internal/observability"
	"github.com/oksasatya/postboard/pkg/helpers"
)

// PostRepository serves Get from Redis and evicts the entry on every write
// to the post, including a failed conditional save. Each eviction also bumps
// a per-post generation; a Get only fills the cache if the generation it saw
// before loading is still current, so a load that raced a write is never
// cached. Redis failures are logged and fall through to the wrapped
// repository.
type PostRepository struct {
	next   repository.PostRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewPostRepository(next repository.PostRepository, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *PostRepository {
	return &PostRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func postKey(id string) string { return "post:" + id }

func postGenKey(id string) string { return "post:gen:" + id }

// errStaleFill reports that a write landed between load and cache fill.
var errStaleFill = errors.New("post changed while loading")

func (r *PostRepository) Insert(ctx context.Context, p *entity.Post) error {
	return r.next.Insert(ctx, p)
}

func (r *PostRepository) Get(ctx context.Context, id string) (*entity.Post, error) {
	var cached entity.Post
	found, err := helpers.RedisGetJSON(ctx, r.rdb, postKey(id), &cached)
	if err != nil {
		r.warn(err, id, "post cache read failed")
	}
	if found {
		observability.PostCacheLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	}
	observability.PostCacheLookups.WithLabelValues("miss").Inc()

	gen, genErr := r.generation(ctx, id)
	if genErr != nil {
		r.warn(genErr, id, "post cache generation read failed")
	}

	p, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		if err := r.fill(ctx, id, gen, p); err != nil && !errors.Is(err, errStaleFill) {
			r.warn(err, id, "post cache write failed")
		}
	}
	return p, nil
}

func (r *PostRepository) generation(ctx context.Context, id string) (int64, error) {
	gen, err := r.rdb.Get(ctx, postGenKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// fill caches p unless the post's generation moved past gen.
func (r *PostRepository) fill(ctx context.Context, id string, gen int64, p *entity.Post) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	genKey := postGenKey(id)
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, postKey(id), b, r.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return errStaleFill
	}
	return err
}

func (r *PostRepository) ListAll(ctx context.Context) ([]*entity.Post, error) {
	return r.next.ListAll(ctx)
}

func (r *PostRepository) Save(ctx context.Context, p *entity.Post) error {
	err := r.next.Save(ctx, p)
	r.evict(ctx, p.ID)
	return err
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	r.evict(ctx, id)
	return err
}

// evict drops the cached post and bumps its generation. The generation
// outlives any in-flight load by keeping at least the cache TTL.
func (r *PostRepository) evict(ctx context.Context, id string) {
	genKey := postGenKey(id)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, r.ttl+time.Minute)
		pipe.Del(ctx, postKey(id))
		return nil
	})
	if err != nil {
		r.warn(err, id, "post cache evict failed")
	}
}

func (r *PostRepository) warn(err error, id, msg string) {
	if r.logger != nil {
		r.logger.WithError(err).WithField("post_id", id).Warn(msg)
	}
}

var _ repository.PostRepository = (*PostRepository)(nil)
