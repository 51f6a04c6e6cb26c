package domain

import "time"

// Post is a content entry owned by the account identified by AuthorID.
type Post struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostWithAuthor pairs a post with its author's username for listings.
type PostWithAuthor struct {
	Post
	AuthorUsername string
}
