package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/app/blobs"
	"yatube/app/repositories"
	"yatube/app/testutil"
)

func pngUpload() *ImageUpload {
	return &ImageUpload{Filename: "cat.png", Content: bytes.NewReader(testutil.PNG())}
}

func strPtr(s string) *string { return &s }

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	env.group(t, "cats")
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, "leo", PostInput{Text: "  Hello world  ", Group: "cats", Image: pngUpload()})
	require.NoError(t, err)
	assert.Greater(t, post.ID, 0)
	assert.Equal(t, "Hello world", post.Text)
	assert.Equal(t, "cats", post.GroupSlug)
	assert.Equal(t, env.clock.Now(), post.CreatedAt)
	assert.True(t, strings.HasPrefix(post.Image, ImagePrefix))
	assert.True(t, strings.HasSuffix(post.Image, ".png"))

	r, obj, err := env.images.Open(ctx, post.Image)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "image/png", obj.ContentType)

	stored, err := env.repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Image, stored.Image)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	ctx := context.Background()

	tests := []struct {
		name   string
		input  PostInput
		fields []string
	}{
		{"empty text", PostInput{Text: ""}, []string{"text"}},
		{"blank text", PostInput{Text: "   "}, []string{"text"}},
		{"unknown group", PostInput{Text: "hi", Group: "ghost"}, []string{"group"}},
		{"not an image", PostInput{Text: "hi", Image: &ImageUpload{Filename: "a.png", Content: strings.NewReader("plain text, honest")}}, []string{"image"}},
		{"empty image", PostInput{Text: "hi", Image: &ImageUpload{Filename: "a.png", Content: strings.NewReader("")}}, []string{"image"}},
		{"everything wrong", PostInput{Text: "", Group: "ghost", Image: &ImageUpload{Content: strings.NewReader("nope")}}, []string{"text", "group", "image"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.posts.CreatePost(ctx, "leo", tt.input)
			ve, ok := AsValidationError(err)
			require.True(t, ok, "got %v", err)
			for _, f := range tt.fields {
				assert.Contains(t, ve.Fields, f)
			}
			assert.Len(t, ve.Fields, len(tt.fields))
		})
	}

	n, err := env.repos.Posts.Count(repositories.AllPosts())
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is written on validation errors")
	assert.Zero(t, env.images.Len())
}

func TestCreatePostImageTooLarge(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	env.posts.SetMaxImageSize(16)

	_, err := env.posts.CreatePost(context.Background(), "leo", PostInput{Text: "hi", Image: pngUpload()})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields["image"], "at most 16 bytes")
}

func TestCreatePostStorageFailureDropsImage(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	env.store.Err = errors.New("disk full")

	_, err := env.posts.CreatePost(context.Background(), "leo", PostInput{Text: "hi", Image: pngUpload()})
	require.Error(t, err)
	_, isValidation := AsValidationError(err)
	assert.False(t, isValidation)
	assert.Zero(t, env.images.Len(), "orphaned image is removed")
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	env.author(t, "anna")
	env.group(t, "cats")
	ctx := context.Background()

	post := env.post(t, "leo", "cats")
	env.post(t, "leo", "")
	env.post(t, "anna", "")
	_, err := env.comments.AddComment(ctx, "anna", post.ID, "first")
	require.NoError(t, err)
	_, err = env.comments.AddComment(ctx, "leo", post.ID, "second")
	require.NoError(t, err)

	detail, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, detail.Post.ID)
	assert.Equal(t, 2, detail.AuthorPostCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "first", detail.Comments[0].Text)
	require.NotNil(t, detail.Post.Group)
	assert.Equal(t, "Group cats", detail.Post.Group.String())

	_, err = env.posts.GetPost(ctx, 9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAuthorizeEdit(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	env.author(t, "anna")
	post := env.post(t, "leo", "")
	ctx := context.Background()

	tests := []struct {
		name      string
		requester string
		id        int
		want      EditStatus
	}{
		{"owner", "leo", post.ID, EditOK},
		{"other author", "anna", post.ID, EditForbidden},
		{"anonymous", "", post.ID, EditForbidden},
		{"missing post", "leo", 9999, EditNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.posts.AuthorizeEdit(ctx, tt.requester, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
			if tt.want != EditNotFound {
				assert.Equal(t, post.ID, res.Post.ID)
			}
		})
	}
}

func TestEditPost(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	env.group(t, "cats")
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, "leo", PostInput{Text: "original", Group: "cats", Image: pngUpload()})
	require.NoError(t, err)
	oldImage := post.Image

	t.Run("text only", func(t *testing.T) {
		res, err := env.posts.EditPost(ctx, "leo", post.ID, PostUpdate{Text: strPtr(" edited ")})
		require.NoError(t, err)
		assert.Equal(t, EditOK, res.Status)
		assert.Equal(t, "edited", res.Post.Text)
		assert.Equal(t, "cats", res.Post.GroupSlug, "group unchanged")
		assert.Equal(t, oldImage, res.Post.Image, "image unchanged")
	})

	t.Run("clear group and replace image", func(t *testing.T) {
		res, err := env.posts.EditPost(ctx, "leo", post.ID, PostUpdate{Group: strPtr(""), Image: pngUpload()})
		require.NoError(t, err)
		assert.Empty(t, res.Post.GroupSlug)
		assert.NotEqual(t, oldImage, res.Post.Image)

		_, _, err = env.images.Open(ctx, oldImage)
		assert.ErrorIs(t, err, blobs.ErrNotFound, "replaced image is deleted")
		assert.Equal(t, 1, env.images.Len())
	})

	stored, err := env.repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Text)
	assert.Equal(t, post.CreatedAt, stored.CreatedAt)
	assert.Equal(t, "leo", stored.Author)
}

func TestEditPostByNonAuthor(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	env.author(t, "anna")
	post := env.post(t, "leo", "")
	ctx := context.Background()

	res, err := env.posts.EditPost(ctx, "anna", post.ID, PostUpdate{Text: strPtr("hijacked")})
	require.NoError(t, err, "a forbidden edit is not a hard error")
	assert.Equal(t, EditForbidden, res.Status)

	stored, err := env.repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Text, stored.Text)
}

func TestEditPostValidation(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	post := env.post(t, "leo", "")
	ctx := context.Background()

	_, err := env.posts.EditPost(ctx, "leo", post.ID, PostUpdate{Text: strPtr(""), Group: strPtr("ghost")})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "text")
	assert.Contains(t, ve.Fields, "group")

	stored, err := env.repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Text, stored.Text, "no partial write")

	res, err := env.posts.EditPost(ctx, "leo", 9999, PostUpdate{Text: strPtr("x")})
	require.NoError(t, err)
	assert.Equal(t, EditNotFound, res.Status)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, "leo", PostInput{Text: "bye", Image: pngUpload()})
	require.NoError(t, err)
	_, err = env.comments.AddComment(ctx, "leo", post.ID, "note")
	require.NoError(t, err)

	require.NoError(t, env.posts.DeletePost(ctx, post.ID))
	_, err = env.posts.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Zero(t, env.images.Len())

	assert.ErrorIs(t, env.posts.DeletePost(ctx, post.ID), repositories.ErrNotFound)
}

func TestDeletePostLeavesCachedIndex(t *testing.T) {
	env := newTestEnv(t)
	env.author(t, "leo")
	ctx := context.Background()

	post, err := env.posts.CreatePost(ctx, "leo", PostInput{Text: "with image", Image: pngUpload()})
	require.NoError(t, err)
	_, err = env.feed.ListAll(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, env.posts.DeletePost(ctx, post.ID))

	page, err := env.feed.ListAll(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, page.Len(), "the cached page still lists the post")
	assert.Equal(t, post.Image, page.Items[0].Image)

	_, _, err = env.images.Open(ctx, post.Image)
	assert.ErrorIs(t, err, blobs.ErrNotFound, "the image is removed right away")
}

func TestEditStatusString(t *testing.T) {
	assert.Equal(t, "ok", EditOK.String())
	assert.Equal(t, "forbidden", EditForbidden.String())
	assert.Equal(t, "not found", EditNotFound.String())
}
