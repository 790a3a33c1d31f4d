// Package auth checks HTTP Basic credentials against stored author records.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"yatube/app/models"
	"yatube/app/repositories"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Realm is sent in Basic-auth challenges.
const Realm = "yatube"

// Authenticator resolves the author making a request.
type Authenticator interface {
	// Authenticate returns the requesting author, nil when the request
	// carries no credentials, or ErrInvalidCredentials.
	Authenticate(r *http.Request) (*models.Author, error)
}

// HashPassword returns the bcrypt hash stored on Author.PasswordHash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BasicAuthenticator reads HTTP Basic credentials.
type BasicAuthenticator struct {
	authors repositories.AuthorRepository
}

// NewBasicAuthenticator creates an authenticator backed by authors.
func NewBasicAuthenticator(authors repositories.AuthorRepository) *BasicAuthenticator {
	return &BasicAuthenticator{authors: authors}
}

func (a *BasicAuthenticator) Authenticate(r *http.Request) (*models.Author, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, nil
	}

	author, err := a.authors.GetByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("loading author %s: %w", username, err)
	}
	if author.PasswordHash == "" || !CheckPassword(author.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return author, nil
}

type authorKey struct{}

// WithAuthor stores the current author in ctx.
func WithAuthor(ctx context.Context, author *models.Author) context.Context {
	return context.WithValue(ctx, authorKey{}, author)
}

// FromContext returns the current author, or nil for anonymous requests.
func FromContext(ctx context.Context) *models.Author {
	author, _ := ctx.Value(authorKey{}).(*models.Author)
	return author
}

// Username returns the current author's username, or "" when anonymous.
func Username(ctx context.Context) string {
	if a := FromContext(ctx); a != nil {
		return a.Username
	}
	return ""
}
