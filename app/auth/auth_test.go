package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"yatube/app/models"
	"yatube/app/repositories/mock"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestBasicAuthenticator(t *testing.T) {
	store := mock.NewStore()
	repos := store.Repositories()

	hash, err := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repos.Authors.Create(&models.Author{Username: "leo", PasswordHash: string(hash), CreatedAt: time.Now()}))
	require.NoError(t, repos.Authors.Create(&models.Author{Username: "nopass", CreatedAt: time.Now()}))

	a := NewBasicAuthenticator(repos.Authors)

	tests := []struct {
		name     string
		user     string
		password string
		noAuth   bool
		want     string
		wantErr  error
	}{
		{name: "anonymous", noAuth: true},
		{name: "valid", user: "leo", password: "pass", want: "leo"},
		{name: "wrong password", user: "leo", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown user", user: "ghost", password: "pass", wantErr: ErrInvalidCredentials},
		{name: "author without password", user: "nopass", password: "", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			author, err := a.Authenticate(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, author)
				return
			}
			require.NotNil(t, author)
			assert.Equal(t, tt.want, author.Username)
		})
	}

	t.Run("storage failure", func(t *testing.T) {
		store.Err = errors.New("boom")
		defer func() { store.Err = nil }()

		req := httptest.NewRequest("GET", "/", nil)
		req.SetBasicAuth("leo", "pass")
		_, err := a.Authenticate(req)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	assert.Equal(t, "", Username(ctx))

	ctx = WithAuthor(ctx, &models.Author{Username: "leo"})
	assert.Equal(t, "leo", FromContext(ctx).Username)
	assert.Equal(t, "leo", Username(ctx))
}
