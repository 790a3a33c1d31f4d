package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommentValidation(t *testing.T) {
	tests := []struct {
		name    string
		comment *Comment
		wantErr bool
	}{
		{
			name: "valid comment",
			comment: &Comment{
				ID:        1,
				PostID:    1,
				Author:    "john",
				Text:      "This is a valid comment",
				CreatedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "missing post",
			comment: &Comment{
				ID:        1,
				Author:    "john",
				Text:      "This is a valid comment",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "empty text",
			comment: &Comment{
				ID:        1,
				PostID:    1,
				Author:    "john",
				Text:      "",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "text too long",
			comment: &Comment{
				ID:        1,
				PostID:    1,
				Author:    "john",
				Text:      strings.Repeat("a", 1001),
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "zero creation time",
			comment: &Comment{
				ID:        1,
				PostID:    1,
				Author:    "john",
				Text:      "Valid content",
				CreatedAt: time.Time{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comment.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommentBeforeCreate(t *testing.T) {
	comment := &Comment{
		ID:     1,
		PostID: 1,
		Author: "john",
		Text:   "Test Comment",
	}

	assert.True(t, comment.CreatedAt.IsZero())
	comment.BeforeCreate()
	assert.False(t, comment.CreatedAt.IsZero())
}

func TestCommentString(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short", "Привет", "Привет"},
		{"exact", "ровно пятнадцат", "ровно пятнадцат"},
		{"long", "Комментарий длиннее пятнадцати символов", "Комментарий дли"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Comment{Text: tt.text}
			assert.Equal(t, tt.want, c.String())
			assert.Equal(t, tt.text, c.Text)
		})
	}
}
