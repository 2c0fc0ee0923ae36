package repository

import (
	"context"

	"blog-server/internal/domain"
)

// PostFilter narrows a listing to posts carrying an exact tag and/or
// written by an exact username. Zero values impose no constraint.
type PostFilter struct {
	Tag      string
	Username string
}

// PostPatch carries a partial update; nil fields are left untouched.
type PostPatch struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// PostRepository exposes persistence operations for Post aggregates.
// Listing order is newest first, by insertion order of the identifier.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]domain.Post, error)
	Count(ctx context.Context, filter PostFilter) (int, error)
	Update(ctx context.Context, id int64, patch PostPatch) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
}
