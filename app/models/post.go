package models

import (
	"errors"
	"strings"
	"time"
)

// StringCut is the number of characters of a post shown in compact renderings.
const StringCut = 15

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
}

// String returns the first StringCut characters of the text.
func (p *Post) String() string {
	return p.Excerpt(StringCut)
}

// Excerpt returns at most n characters of the post text. The stored text is
// never modified.
func (p *Post) Excerpt(n int) string {
	runes := []rune(p.Text)
	if n < 0 || len(runes) <= n {
		return p.Text
	}
	return string(runes[:n])
}

// HasImage reports whether an image is attached to the post.
func (p *Post) HasImage() bool {
	return p.Image != ""
}

// InGroup reports whether the post belongs to a group.
func (p *Post) InGroup() bool {
	return p.GroupSlug != ""
}

// NewComment returns an unsaved comment by author on the post, trimmed of
// surrounding whitespace.
func (p *Post) NewComment(author, text string, at time.Time) *Comment {
	return &Comment{
		PostID:    p.ID,
		Author:    author,
		Text:      strings.TrimSpace(text),
		CreatedAt: at,
	}
}
