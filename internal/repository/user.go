package repository

import (
	"context"

	"blog-server/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Username uniqueness is enforced by the store itself, so concurrent
// registrations with the same name cannot both succeed.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
