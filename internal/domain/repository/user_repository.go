package repository

import (
	"context"

	"github.com/oksasatya/postboard/internal/domain/entity"
)

// UserRepository defines the credential store. It performs no business
// checks: callers verify email uniqueness before Create.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
