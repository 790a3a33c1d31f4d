package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yatube/app/blobs"
	"yatube/app/cache"
	"yatube/app/logging"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/repositories/mock"
	"yatube/app/testutil"
)

type testEnv struct {
	repos    *repositories.Repositories
	store    *mock.Store
	images   *blobs.Memory
	clock    *testutil.StubClock
	cache    *cache.Memory[*FeedPage]
	follows  *FollowService
	feed     *FeedService
	posts    *PostService
	comments *CommentService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := mock.NewStore()
	repos := store.Repositories()
	clk := testutil.FixedClock()
	logger := logging.Discard()
	images := blobs.NewMemory()
	pageCache := cache.NewMemory[*FeedPage](clk)

	follows := NewFollowService(repos.Authors, repos.Follows, clk, logger)
	return &testEnv{
		repos:    repos,
		store:    store,
		images:   images,
		clock:    clk,
		cache:    pageCache,
		follows:  follows,
		feed:     NewFeedService(repos, follows, pageCache, FeedOptions{PerPage: 10, CacheTTL: 20 * time.Second}, logger),
		posts:    NewPostService(repos, images, clk, logger),
		comments: NewCommentService(repos, clk, logger),
		admin:    NewAdminService(repos, clk, logger),
	}
}

func (e *testEnv) author(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, e.repos.Authors.Create(&models.Author{Username: username, CreatedAt: e.clock.Now()}))
}

func (e *testEnv) group(t *testing.T, slug string) {
	t.Helper()
	require.NoError(t, e.repos.Groups.Create(&models.Group{Slug: slug, Title: "Group " + slug}))
}

// post stores a post directly, advancing the clock so ordering is stable.
func (e *testEnv) post(t *testing.T, author, group string) *models.Post {
	t.Helper()
	e.clock.Advance(time.Second)
	p := &models.Post{Author: author, Text: fmt.Sprintf("post by %s at %s", author, e.clock.Now().Format(time.TimeOnly)), GroupSlug: group, CreatedAt: e.clock.Now()}
	require.NoError(t, e.repos.Posts.Create(p))
	return p
}
