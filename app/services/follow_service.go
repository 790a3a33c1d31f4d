package services

import (
	"context"
	"fmt"
	"log/slog"

	"yatube/app/clock"
	"yatube/app/models"
	"yatube/app/repositories"
)

// FollowService maintains the follow graph between users and authors.
type FollowService struct {
	authors repositories.AuthorRepository
	follows repositories.FollowRepository
	clock   clock.Clock
	logger  *slog.Logger
}

// NewFollowService creates a new FollowService
func NewFollowService(authors repositories.AuthorRepository, follows repositories.FollowRepository,
	clk clock.Clock, logger *slog.Logger) *FollowService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &FollowService{authors: authors, follows: follows, clock: clk, logger: logger}
}

// Follow subscribes user to author and reports whether the edge now exists.
// Following yourself is silently ignored. Unknown authors are ErrNotFound.
func (s *FollowService) Follow(ctx context.Context, user, author string) (bool, error) {
	if _, err := s.authors.GetByUsername(author); err != nil {
		return false, fmt.Errorf("author %s: %w", author, err)
	}
	if user == author {
		s.logger.DebugContext(ctx, "ignoring self-follow", "user", user)
		return false, nil
	}

	follow := &models.Follow{User: user, Author: author, CreatedAt: s.clock.Now()}
	if err := s.follows.Create(follow); err != nil {
		return false, fmt.Errorf("following %s: %w", author, err)
	}
	s.logger.InfoContext(ctx, "followed", "user", user, "author", author)
	return true, nil
}

// Unfollow removes the edge if it exists.
func (s *FollowService) Unfollow(ctx context.Context, user, author string) error {
	if err := s.follows.Delete(user, author); err != nil {
		return fmt.Errorf("unfollowing %s: %w", author, err)
	}
	s.logger.InfoContext(ctx, "unfollowed", "user", user, "author", author)
	return nil
}

func (s *FollowService) IsFollowing(user, author string) (bool, error) {
	if user == "" || user == author {
		return false, nil
	}
	ok, err := s.follows.Exists(user, author)
	if err != nil {
		return false, fmt.Errorf("checking follow %s -> %s: %w", user, author, err)
	}
	return ok, nil
}

// FollowedAuthorsOf returns the filter selecting posts by everyone user follows.
func (s *FollowService) FollowedAuthorsOf(user string) (repositories.PostFilter, error) {
	authors, err := s.follows.ListFollowing(user)
	if err != nil {
		return repositories.PostFilter{}, fmt.Errorf("listing follows of %s: %w", user, err)
	}
	return repositories.PostsByAny(authors), nil
}

// Counts returns how many users follow username and how many authors username follows.
func (s *FollowService) Counts(username string) (followers, following int, err error) {
	followers, err = s.follows.CountFollowers(username)
	if err != nil {
		return 0, 0, fmt.Errorf("counting followers of %s: %w", username, err)
	}
	following, err = s.follows.CountFollowing(username)
	if err != nil {
		return 0, 0, fmt.Errorf("counting follows of %s: %w", username, err)
	}
	return followers, following, nil
}
