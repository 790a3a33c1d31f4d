package repositories

import (
	"errors"

	"yatube/app/models"
	"yatube/app/pagination"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// AuthorRepository defines the interface for author data access
type AuthorRepository interface {
	Create(author *models.Author) error
	GetByUsername(username string) (*models.Author, error)
	List() ([]*models.Author, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	GetBySlug(slug string) (*models.Group, error)
	List() ([]*models.Group, error)
}

// PostRepository defines the interface for post data access.
// Lists are ordered newest first.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	ListPage(filter PostFilter, perPage, page int) (*pagination.Page[*models.Post], error)
	Count(filter PostFilter) (int, error)
	Update(post *models.Post) error
	// Delete removes the post and its comments.
	Delete(id int) error
}

// CommentRepository defines the interface for comment data access.
// Lists are ordered oldest first.
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
}

// FollowRepository defines the interface for the follow graph.
// Create and Delete are idempotent.
type FollowRepository interface {
	Create(follow *models.Follow) error
	Delete(user, author string) error
	Exists(user, author string) (bool, error)
	ListFollowing(user string) ([]string, error)
	CountFollowers(author string) (int, error)
	CountFollowing(user string) (int, error)
}

// Repositories bundles one backend's repositories.
type Repositories struct {
	Authors  AuthorRepository
	Groups   GroupRepository
	Posts    PostRepository
	Comments CommentRepository
	Follows  FollowRepository

	closeFn func() error
}

// NewRepositories assembles a bundle. closeFn releases the backend and may be nil.
func NewRepositories(authors AuthorRepository, groups GroupRepository, posts PostRepository,
	comments CommentRepository, follows FollowRepository, closeFn func() error) *Repositories {
	return &Repositories{
		Authors:  authors,
		Groups:   groups,
		Posts:    posts,
		Comments: comments,
		Follows:  follows,
		closeFn:  closeFn,
	}
}

// Close releases the underlying storage.
func (r *Repositories) Close() error {
	if r.closeFn == nil {
		return nil
	}
	return r.closeFn()
}
