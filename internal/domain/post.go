package domain

import "time"

// Post is an article written by a user. Body always holds sanitized HTML;
// nothing writes an unsanitized body to the store. The owning user is set
// at creation and never changes.
type Post struct {
	ID        int64
	Title     string
	Body      string
	Tags      []string
	UserID    int64
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostPage is one page of a post listing. Posts carry a shortened,
// markup-free body; LastPage is the total number of pages matching the
// same filter.
type PostPage struct {
	Posts    []Post
	LastPage int
}
