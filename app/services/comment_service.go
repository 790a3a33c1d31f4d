package services

import (
	"context"
	"fmt"
	"log/slog"

	"yatube/app/clock"
	"yatube/app/models"
	"yatube/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	clock    clock.Clock
	logger   *slog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(repos *repositories.Repositories, clk clock.Clock, logger *slog.Logger) *CommentService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &CommentService{
		comments: repos.Comments,
		posts:    repos.Posts,
		clock:    clk,
		logger:   logger,
	}
}

// AddComment stores a comment by author on the post. An unknown post is
// ErrNotFound; empty or oversized text is a ValidationError.
func (s *CommentService) AddComment(ctx context.Context, author string, postID int, text string) (*models.Comment, error) {
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}

	comment := post.NewComment(author, text, s.clock.Now())
	if err := comment.Validate(); err != nil {
		return nil, fromValidator(err)
	}
	if err := s.comments.Create(comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.InfoContext(ctx, "comment added", "post", postID, "author", author, "text", comment.String())
	return comment, nil
}
