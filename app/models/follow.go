package models

import "errors"

// ErrSelfFollow is returned when a follow edge points back at its owner.
var ErrSelfFollow = errors.New("users cannot follow themselves")

// Validate checks the edge. Self-follows are rejected.
func (f *Follow) Validate() error {
	if f.User != "" && f.User == f.Author {
		return ErrSelfFollow
	}
	return validate.Struct(f)
}
