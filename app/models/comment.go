package models

import (
	"errors"
	"time"
)

// Validate checks the comment fields.
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}
	return nil
}

// BeforeCreate stamps the creation time when it is unset.
func (c *Comment) BeforeCreate() {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
}

// String returns the first StringCut characters of the comment text.
func (c *Comment) String() string {
	runes := []rune(c.Text)
	if len(runes) <= StringCut {
		return c.Text
	}
	return string(runes[:StringCut])
}
