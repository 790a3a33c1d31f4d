package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"yatube/app/blobs"
	"yatube/app/clock"
	"yatube/app/models"
	"yatube/app/repositories"
)

// DefaultMaxImageSize bounds uploaded images.
const DefaultMaxImageSize = 5 << 20

// ImagePrefix is the blob key prefix for post images.
const ImagePrefix = "posts/"

// ImageUpload is an uploaded image file.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// PostInput is the data for a new post.
type PostInput struct {
	Text  string       `json:"text" validate:"required"`
	Group string       `json:"group" validate:"omitempty,max=50"`
	Image *ImageUpload `json:"-" validate:"-"`
}

// PostUpdate holds the fields to change. nil leaves a field unchanged; an
// empty Group removes the post from its group.
type PostUpdate struct {
	Text  *string
	Group *string
	Image *ImageUpload
}

// PostDetail is a post with everything the detail page shows.
type PostDetail struct {
	Post            *models.Post      `json:"post"`
	Comments        []*models.Comment `json:"comments"`
	AuthorPostCount int               `json:"author_post_count"`
}

// EditStatus is the outcome of an edit authorization check.
type EditStatus int

const (
	EditOK EditStatus = iota
	EditForbidden
	EditNotFound
)

func (s EditStatus) String() string {
	switch s {
	case EditOK:
		return "ok"
	case EditForbidden:
		return "forbidden"
	case EditNotFound:
		return "not found"
	default:
		return fmt.Sprintf("EditStatus(%d)", int(s))
	}
}

// EditResult carries the post when Status is EditOK or EditForbidden.
type EditResult struct {
	Status EditStatus
	Post   *models.Post
}

// PostService handles business logic for blog posts
type PostService struct {
	posts        repositories.PostRepository
	groups       repositories.GroupRepository
	comments     repositories.CommentRepository
	images       blobs.Store
	clock        clock.Clock
	logger       *slog.Logger
	maxImageSize int64
}

// NewPostService creates a new PostService
func NewPostService(repos *repositories.Repositories, images blobs.Store, clk clock.Clock, logger *slog.Logger) *PostService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &PostService{
		posts:        repos.Posts,
		groups:       repos.Groups,
		comments:     repos.Comments,
		images:       images,
		clock:        clk,
		logger:       logger,
		maxImageSize: DefaultMaxImageSize,
	}
}

// SetMaxImageSize changes the upload limit.
func (s *PostService) SetMaxImageSize(n int64) {
	s.maxImageSize = n
}

// preparedImage is an upload that passed validation but is not stored yet.
type preparedImage struct {
	data        []byte
	contentType string
	key         string
}

// prepareImage reads and sniffs the upload. Only images are accepted.
func (s *PostService) prepareImage(img *ImageUpload) (*preparedImage, *ValidationError) {
	if img == nil || img.Content == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(img.Content, s.maxImageSize+1))
	if err != nil {
		return nil, NewValidationError("image", "The uploaded file could not be read.")
	}
	if len(data) == 0 {
		return nil, NewValidationError("image", "The submitted file is empty.")
	}
	if int64(len(data)) > s.maxImageSize {
		return nil, NewValidationError("image", fmt.Sprintf("Ensure the image is at most %d bytes.", s.maxImageSize))
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, NewValidationError("image",
			"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return &preparedImage{
		data:        data,
		contentType: mtype.String(),
		key:         ImagePrefix + uuid.NewString() + mtype.Extension(),
	}, nil
}

func (s *PostService) storeImage(ctx context.Context, img *preparedImage) error {
	if err := s.images.Put(ctx, img.key, bytes.NewReader(img.data), int64(len(img.data)), img.contentType); err != nil {
		return fmt.Errorf("storing image: %w", err)
	}
	return nil
}

// dropImage removes a blob that is no longer referenced. Failures are logged only.
func (s *PostService) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete image", "key", key, "error", err)
	}
}

// checkGroup validates a group reference. Empty means no group.
func (s *PostService) checkGroup(slug string) (*ValidationError, error) {
	if slug == "" {
		return nil, nil
	}
	_, err := s.groups.GetBySlug(slug)
	if errors.Is(err, repositories.ErrNotFound) {
		return NewValidationError("group", "Select a valid choice. That choice is not one of the available choices."), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading group %s: %w", slug, err)
	}
	return nil, nil
}

// CreatePost validates the input and stores a new post by author.
func (s *PostService) CreatePost(ctx context.Context, author string, in PostInput) (*models.Post, error) {
	in.Text = strings.TrimSpace(in.Text)
	in.Group = strings.TrimSpace(in.Group)

	verr := &ValidationError{}
	if err := fromValidator(models.ValidateStruct(&in)); err != nil {
		ve, ok := AsValidationError(err)
		if !ok {
			return nil, err
		}
		verr.Merge(ve)
	}
	groupErr, err := s.checkGroup(in.Group)
	if err != nil {
		return nil, err
	}
	verr.Merge(groupErr)
	img, imgErr := s.prepareImage(in.Image)
	verr.Merge(imgErr)
	if !verr.Empty() {
		return nil, verr
	}

	post := &models.Post{
		Author:    author,
		Text:      in.Text,
		GroupSlug: in.Group,
		CreatedAt: s.clock.Now(),
	}
	if err := post.Validate(); err != nil {
		return nil, fromValidator(err)
	}

	if img != nil {
		if err := s.storeImage(ctx, img); err != nil {
			return nil, err
		}
		post.Image = img.key
	}
	if err := s.posts.Create(post); err != nil {
		s.dropImage(ctx, post.Image)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.InfoContext(ctx, "post created", "id", post.ID, "author", author)
	return post, nil
}

// GetPost returns the post with its group, comments (oldest first) and the
// author's post count.
func (s *PostService) GetPost(ctx context.Context, id int) (*PostDetail, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	if post.InGroup() {
		group, err := s.groups.GetBySlug(post.GroupSlug)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("loading group %s: %w", post.GroupSlug, err)
		}
		post.Group = group
	}

	comments, err := s.comments.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	post.Comments = comments

	count, err := s.posts.Count(repositories.PostsBy(post.Author))
	if err != nil {
		return nil, fmt.Errorf("counting posts of %s: %w", post.Author, err)
	}

	return &PostDetail{Post: post, Comments: comments, AuthorPostCount: count}, nil
}

// AuthorizeEdit checks whether requester may edit the post without changing it.
func (s *PostService) AuthorizeEdit(ctx context.Context, requester string, id int) (EditResult, error) {
	post, err := s.posts.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return EditResult{Status: EditNotFound}, nil
	}
	if err != nil {
		return EditResult{}, fmt.Errorf("post %d: %w", id, err)
	}
	if requester == "" || post.Author != requester {
		s.logger.DebugContext(ctx, "edit refused", "id", id, "requester", requester)
		return EditResult{Status: EditForbidden, Post: post}, nil
	}
	return EditResult{Status: EditOK, Post: post}, nil
}

// EditPost applies upd when requester owns the post. Non-owners get
// EditForbidden and the post is left untouched.
func (s *PostService) EditPost(ctx context.Context, requester string, id int, upd PostUpdate) (EditResult, error) {
	res, err := s.AuthorizeEdit(ctx, requester, id)
	if err != nil || res.Status != EditOK {
		return res, err
	}
	post := res.Post

	verr := &ValidationError{}
	text := post.Text
	if upd.Text != nil {
		text = strings.TrimSpace(*upd.Text)
		if text == "" {
			verr.Add("text", "This field is required.")
		}
	}
	group := post.GroupSlug
	if upd.Group != nil {
		group = strings.TrimSpace(*upd.Group)
		groupErr, err := s.checkGroup(group)
		if err != nil {
			return EditResult{}, err
		}
		verr.Merge(groupErr)
	}
	img, imgErr := s.prepareImage(upd.Image)
	verr.Merge(imgErr)
	if !verr.Empty() {
		return EditResult{}, verr
	}

	oldImage := post.Image
	post.Text = text
	post.GroupSlug = group
	if img != nil {
		if err := s.storeImage(ctx, img); err != nil {
			return EditResult{}, err
		}
		post.Image = img.key
	}
	if err := s.posts.Update(post); err != nil {
		if img != nil {
			s.dropImage(ctx, img.key)
		}
		return EditResult{}, fmt.Errorf("updating post %d: %w", id, err)
	}
	if img != nil && oldImage != "" {
		s.dropImage(ctx, oldImage)
	}

	s.logger.InfoContext(ctx, "post edited", "id", id, "author", requester)
	return EditResult{Status: EditOK, Post: post}, nil
}

// DeletePost removes the post, its comments and its image. Cached index
// pages keep listing the post until they expire, and for that window they
// point at an image that is already gone, so the page shows it broken.
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return fmt.Errorf("post %d: %w", id, err)
	}
	if err := s.posts.Delete(id); err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	s.dropImage(ctx, post.Image)
	s.logger.InfoContext(ctx, "post deleted", "id", id)
	return nil
}
