package service

import (
	"context"
	"errors"

	"blog-server/internal/domain"
	"blog-server/internal/repository"
	"blog-server/internal/sanitize"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 10

// ListQuery carries the client-supplied listing parameters. Page is
// 1-based; Tag and Username are optional exact-match filters combined
// with logical AND.
type ListQuery struct {
	Page     int
	Tag      string
	Username string
}

// PostPatch is a partial edit; nil fields are left unchanged.
type PostPatch struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// PostService coordinates post operations backed by the repository.
// Bodies are sanitized here on every write, so no unsanitized HTML can
// reach the store regardless of which caller performs the write.
type PostService interface {
	Create(ctx context.Context, identity domain.Identity, title, body string, tags []string) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, q ListQuery) (*domain.PostPage, error)
	Update(ctx context.Context, id int64, patch PostPatch) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
}

type postService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) PostService {
	return &postService{posts: posts}
}

func (s *postService) Create(ctx context.Context, identity domain.Identity, title, body string, tags []string) (*domain.Post, error) {
	if title == "" {
		return nil, validationErrorf("title is required")
	}
	if body == "" {
		return nil, validationErrorf("body is required")
	}
	if tags == nil {
		return nil, validationErrorf("tags are required")
	}

	post := &domain.Post{
		Title:    title,
		Body:     sanitize.PostBody(body),
		Tags:     tags,
		UserID:   identity.ID,
		Username: identity.Username,
	}

	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, q ListQuery) (*domain.PostPage, error) {
	if q.Page < 1 {
		return nil, validationErrorf("page must be 1 or greater")
	}

	filter := repository.PostFilter{Tag: q.Tag, Username: q.Username}

	posts, err := s.posts.List(ctx, filter, PageSize, (q.Page-1)*PageSize)
	if err != nil {
		return nil, err
	}

	// second round trip for the total; the page itself and the count are
	// separate queries over the same filter
	count, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].Body = sanitize.Excerpt(posts[i].Body)
	}

	return &domain.PostPage{
		Posts:    posts,
		LastPage: (count + PageSize - 1) / PageSize,
	}, nil
}

func (s *postService) Update(ctx context.Context, id int64, patch PostPatch) (*domain.Post, error) {
	repoPatch := repository.PostPatch{
		Title: patch.Title,
		Tags:  patch.Tags,
	}
	if patch.Body != nil {
		clean := sanitize.PostBody(*patch.Body)
		repoPatch.Body = &clean
	}

	post, err := s.posts.Update(ctx, id, repoPatch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id int64) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}
