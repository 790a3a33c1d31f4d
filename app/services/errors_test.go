package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/app/models"
)

func TestValidationError(t *testing.T) {
	ve := NewValidationError("text", "This field is required.")
	ve.Add("text", "ignored")
	ve.Add("group", "Unknown group.")

	assert.Equal(t, "validation failed: group: Unknown group.; text: This field is required.", ve.Error())
	assert.False(t, ve.Empty())
	assert.True(t, (&ValidationError{}).Empty())

	wrapped := fmt.Errorf("creating post: %w", ve)
	got, ok := AsValidationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ve, got)

	_, ok = AsValidationError(errors.New("plain"))
	assert.False(t, ok)
}

func TestFromValidator(t *testing.T) {
	err := fromValidator(models.ValidateStruct(&models.Group{Slug: "bad slug!"}))
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields["slug"], "valid slug")
	assert.Equal(t, "This field is required.", ve.Fields["title"])

	plain := errors.New("plain")
	assert.Equal(t, plain, fromValidator(plain))
}
