package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/app/repositories"
)

func TestAddComment(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	env.author(t, "anna")
	post := env.post(t, "leo", "")
	ctx := context.Background()

	comment, err := env.comments.AddComment(ctx, "anna", post.ID, "  nice post  ")
	require.NoError(t, err)
	assert.Greater(t, comment.ID, 0)
	assert.Equal(t, "nice post", comment.Text)
	assert.Equal(t, env.clock.Now(), comment.CreatedAt)

	assert.Equal(t, post.ID, comment.PostID)

	detail, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "anna", detail.Comments[0].Author)
}

func TestAddCommentErrors(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	post := env.post(t, "leo", "")
	ctx := context.Background()

	tests := []struct {
		name       string
		postID     int
		text       string
		validation bool
		notFound   bool
	}{
		{name: "empty text", postID: post.ID, text: "", validation: true},
		{name: "blank text", postID: post.ID, text: " \n ", validation: true},
		{name: "too long", postID: post.ID, text: strings.Repeat("a", 1001), validation: true},
		{name: "unknown post", postID: 9999, text: "hello", notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.comments.AddComment(ctx, "leo", tt.postID, tt.text)
			require.Error(t, err)
			_, isValidation := AsValidationError(err)
			assert.Equal(t, tt.validation, isValidation)
			assert.Equal(t, tt.notFound, errors.Is(err, repositories.ErrNotFound))
		})
	}

	comments, err := env.repos.Comments.ListByPost(post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "rejected comments are not stored")
}
