package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/postboard/internal/domain/entity"
)

var (
	// ErrNotFound is returned when the addressed record does not exist or
	// the identifier is malformed.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by PostRepository.Save when the stored version
	// no longer matches the version the caller read.
	ErrConflict = errors.New("version conflict")
	// ErrDuplicateEmail is returned by UserRepository.Create when the email
	// is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// PostRepository persists posts with their embedded comments and likes as
// one unit. Get, Save and Delete return ErrNotFound for unknown ids.
type PostRepository interface {
	// Insert assigns ID, CreatedAt and Version (1).
	Insert(ctx context.Context, p *entity.Post) error
	Get(ctx context.Context, id string) (*entity.Post, error)
	// ListAll returns every post, newest first.
	ListAll(ctx context.Context) ([]*entity.Post, error)
	// Save stores the full post if p.Version matches the stored version and
	// increments p.Version on success.
	Save(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
}
