package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFollowValidation(t *testing.T) {
	assert.NoError(t, (&Follow{User: "mia", Author: "leo"}).Validate())
	assert.ErrorIs(t, (&Follow{User: "leo", Author: "leo"}).Validate(), ErrSelfFollow)
	assert.Error(t, (&Follow{User: "mia"}).Validate())
}

func TestAuthorAndGroupValidation(t *testing.T) {
	tests := []struct {
		name    string
		check   func() error
		wantErr bool
	}{
		{"plain username", (&Author{Username: "leo.tolstoy"}).Validate, false},
		{"username with space", (&Author{Username: "leo tolstoy"}).Validate, true},
		{"username with colon", (&Author{Username: "leo:t"}).Validate, true},
		{"empty username", (&Author{}).Validate, true},
		{"valid group", (&Group{Slug: "Test-slug", Title: "Cats"}).Validate, false},
		{"group slug with slash", (&Group{Slug: "a/b", Title: "Cats"}).Validate, true},
		{"group without title", (&Group{Slug: "cats"}).Validate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr {
				assert.Error(t, tt.check())
			} else {
				assert.NoError(t, tt.check())
			}
		})
	}
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "leo", (&Author{Username: "leo"}).DisplayName())
	assert.Equal(t, "Leo Tolstoy", (&Author{Username: "leo", FullName: "Leo Tolstoy"}).DisplayName())
	assert.Equal(t, "Cats", (&Group{Slug: "cats", Title: "Cats"}).String())
}
