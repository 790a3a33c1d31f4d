package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"yatube/app/auth"
	"yatube/app/clock"
	"yatube/app/models"
	"yatube/app/repositories"
)

// AdminService manages authors and groups from the command line.
type AdminService struct {
	authors repositories.AuthorRepository
	groups  repositories.GroupRepository
	clock   clock.Clock
	logger  *slog.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(repos *repositories.Repositories, clk clock.Clock, logger *slog.Logger) *AdminService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &AdminService{authors: repos.Authors, groups: repos.Groups, clock: clk, logger: logger}
}

// CreateAuthor registers an author with a bcrypt-hashed password.
func (s *AdminService) CreateAuthor(ctx context.Context, username, fullName, password string) (*models.Author, error) {
	author := &models.Author{
		Username:  strings.TrimSpace(username),
		FullName:  strings.TrimSpace(fullName),
		CreatedAt: s.clock.Now(),
	}
	if err := author.Validate(); err != nil {
		return nil, fromValidator(err)
	}
	if password == "" {
		return nil, NewValidationError("password", "This field is required.")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	author.PasswordHash = hash

	if err := s.authors.Create(author); err != nil {
		return nil, fmt.Errorf("creating author %s: %w", author.Username, err)
	}
	s.logger.InfoContext(ctx, "author created", "username", author.Username)
	return author, nil
}

// CreateGroup adds a group posts can be tagged with.
func (s *AdminService) CreateGroup(ctx context.Context, slug, title, description string) (*models.Group, error) {
	group := &models.Group{
		Slug:        strings.TrimSpace(slug),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
	if err := group.Validate(); err != nil {
		return nil, fromValidator(err)
	}
	if err := s.groups.Create(group); err != nil {
		return nil, fmt.Errorf("creating group %s: %w", group.Slug, err)
	}
	s.logger.InfoContext(ctx, "group created", "slug", group.Slug)
	return group, nil
}

func (s *AdminService) ListAuthors() ([]*models.Author, error) {
	return s.authors.List()
}

func (s *AdminService) ListGroups() ([]*models.Group, error) {
	return s.groups.List()
}
