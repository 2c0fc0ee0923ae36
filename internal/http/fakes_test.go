package http

import (
	"context"
	"fmt"
	"slices"
	"time"

	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

// in-memory repositories backing the real services under test.

type fakeUserRepo struct {
	users  []domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1}
}

func (r *fakeUserRepo) Init(ctx context.Context) error { return nil }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return 0, fmt.Errorf("user %w", repository.ErrDuplicate)
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users = append(r.users, *user)
	return user.ID, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %w", repository.ErrNotFound)
}

type fakePostRepo struct {
	posts  []domain.Post
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1}
}

func (r *fakePostRepo) Init(ctx context.Context) error { return nil }

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.ID = r.nextID
	post.CreatedAt = now
	post.UpdatedAt = now
	r.nextID++
	r.posts = append(r.posts, *post)
	return post.ID, nil
}

func (r *fakePostRepo) Get(ctx context.Context, id int64) (*domain.Post, error) {
	for _, post := range r.posts {
		if post.ID == id {
			p := post
			return &p, nil
		}
	}
	return nil, fmt.Errorf("post %w", repository.ErrNotFound)
}

func matchesFilter(filter repository.PostFilter, post domain.Post) bool {
	if filter.Username != "" && post.Username != filter.Username {
		return false
	}
	if filter.Tag != "" && !slices.Contains(post.Tags, filter.Tag) {
		return false
	}
	return true
}

func (r *fakePostRepo) List(ctx context.Context, filter repository.PostFilter, limit, offset int) ([]domain.Post, error) {
	var out []domain.Post
	skipped := 0
	for i := len(r.posts) - 1; i >= 0; i-- {
		if !matchesFilter(filter, r.posts[i]) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, r.posts[i])
	}
	return out, nil
}

func (r *fakePostRepo) Count(ctx context.Context, filter repository.PostFilter) (int, error) {
	count := 0
	for _, post := range r.posts {
		if matchesFilter(filter, post) {
			count++
		}
	}
	return count, nil
}

func (r *fakePostRepo) Update(ctx context.Context, id int64, patch repository.PostPatch) (*domain.Post, error) {
	for i := range r.posts {
		if r.posts[i].ID != id {
			continue
		}
		if patch.Title != nil {
			r.posts[i].Title = *patch.Title
		}
		if patch.Body != nil {
			r.posts[i].Body = *patch.Body
		}
		if patch.Tags != nil {
			r.posts[i].Tags = *patch.Tags
		}
		r.posts[i].UpdatedAt = time.Now().UTC()
		p := r.posts[i]
		return &p, nil
	}
	return nil, fmt.Errorf("post %w", repository.ErrNotFound)
}

func (r *fakePostRepo) Delete(ctx context.Context, id int64) error {
	for i := range r.posts {
		if r.posts[i].ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("post %w", repository.ErrNotFound)
}

var (
	_ repository.UserRepository = (*fakeUserRepo)(nil)
	_ repository.PostRepository = (*fakePostRepo)(nil)
)
