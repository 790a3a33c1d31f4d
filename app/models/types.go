package models

import "time"

// Author is a registered user. Authors are created by the authentication
// collaborator and never change from the blog's point of view.
type Author struct {
	Username     string    `json:"username" validate:"required,max=150,username"`
	FullName     string    `json:"full_name,omitempty" validate:"max=150"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Group is a slug-addressed category posts can belong to.
type Group struct {
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
}

// Post represents a blog post with comments.
type Post struct {
	ID        int        `json:"id"`
	Author    string     `json:"author" validate:"required"`
	Text      string     `json:"text" validate:"required"`
	GroupSlug string     `json:"group,omitempty"`
	Image     string     `json:"image,omitempty"`
	CreatedAt time.Time  `json:"created_at" validate:"required"`
	Group     *Group     `json:"-"`
	Comments  []*Comment `json:"comments,omitempty" validate:"-"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id" validate:"required,gt=0"`
	Author    string    `json:"author" validate:"required"`
	Text      string    `json:"text" validate:"required,max=1000"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

// Follow is a directed subscription of User to Author.
type Follow struct {
	User      string    `json:"user" validate:"required"`
	Author    string    `json:"author" validate:"required,nefield=User"`
	CreatedAt time.Time `json:"created_at"`
}
