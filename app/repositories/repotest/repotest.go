// Package repotest holds the behavior every repositories backend must share.
package repotest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/app/models"
	"yatube/app/repositories"
)

// Factory returns a fresh, empty bundle. The suite closes it.
type Factory func(t *testing.T) *repositories.Repositories

var base = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// Run exercises every repository in the bundle.
func Run(t *testing.T, newRepos Factory) {
	t.Run("authors", func(t *testing.T) { testAuthors(t, open(t, newRepos)) })
	t.Run("groups", func(t *testing.T) { testGroups(t, open(t, newRepos)) })
	t.Run("posts", func(t *testing.T) { testPosts(t, open(t, newRepos)) })
	t.Run("post pages", func(t *testing.T) { testPostPages(t, open(t, newRepos)) })
	t.Run("comments", func(t *testing.T) { testComments(t, open(t, newRepos)) })
	t.Run("follows", func(t *testing.T) { testFollows(t, open(t, newRepos)) })
	t.Run("concurrent creates", func(t *testing.T) { testConcurrentCreates(t, open(t, newRepos)) })
}

func open(t *testing.T, newRepos Factory) *repositories.Repositories {
	repos := newRepos(t)
	t.Cleanup(func() {
		assert.NoError(t, repos.Close())
	})
	return repos
}

// Seed creates authors and groups so posts can reference them.
func Seed(t *testing.T, repos *repositories.Repositories, authors []string, groups []string) {
	t.Helper()
	for _, name := range authors {
		require.NoError(t, repos.Authors.Create(&models.Author{Username: name, CreatedAt: base}))
	}
	for _, slug := range groups {
		require.NoError(t, repos.Groups.Create(&models.Group{Slug: slug, Title: "Group " + slug}))
	}
}

func testAuthors(t *testing.T, repos *repositories.Repositories) {
	author := &models.Author{Username: "leo", FullName: "Leo Tolstoy", PasswordHash: "hash", CreatedAt: base}
	require.NoError(t, repos.Authors.Create(author))

	got, err := repos.Authors.GetByUsername("leo")
	require.NoError(t, err)
	assert.Equal(t, "Leo Tolstoy", got.FullName)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, base.Equal(got.CreatedAt))

	err = repos.Authors.Create(&models.Author{Username: "leo", CreatedAt: base})
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)

	_, err = repos.Authors.GetByUsername("nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repos.Authors.Create(&models.Author{Username: "anna", CreatedAt: base}))
	all, err := repos.Authors.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "anna", all[0].Username)
	assert.Equal(t, "leo", all[1].Username)
}

func testGroups(t *testing.T, repos *repositories.Repositories) {
	require.NoError(t, repos.Groups.Create(&models.Group{Slug: "cats", Title: "Cats", Description: "meow"}))

	got, err := repos.Groups.GetBySlug("cats")
	require.NoError(t, err)
	assert.Equal(t, "Cats", got.Title)
	assert.Equal(t, "meow", got.Description)

	err = repos.Groups.Create(&models.Group{Slug: "cats", Title: "Other"})
	assert.ErrorIs(t, err, repositories.ErrAlreadyExists)

	_, err = repos.Groups.GetBySlug("dogs")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	groups, err := repos.Groups.List()
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func testPosts(t *testing.T, repos *repositories.Repositories) {
	Seed(t, repos, []string{"leo"}, []string{"cats", "dogs"})

	post := &models.Post{Author: "leo", Text: "first", GroupSlug: "cats", CreatedAt: base}
	require.NoError(t, repos.Posts.Create(post))
	assert.Greater(t, post.ID, 0)

	got, err := repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)
	assert.Equal(t, "cats", got.GroupSlug)
	assert.Equal(t, "leo", got.Author)

	second := &models.Post{Author: "leo", Text: "second", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repos.Posts.Create(second))
	assert.Greater(t, second.ID, post.ID, "ids are monotonic")

	t.Run("update", func(t *testing.T) {
		got.Text = "edited"
		got.GroupSlug = "dogs"
		got.Image = "posts/x.png"
		require.NoError(t, repos.Posts.Update(got))

		reloaded, err := repos.Posts.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", reloaded.Text)
		assert.Equal(t, "dogs", reloaded.GroupSlug)
		assert.Equal(t, "posts/x.png", reloaded.Image)

		reloaded.GroupSlug = ""
		require.NoError(t, repos.Posts.Update(reloaded))
		reloaded, err = repos.Posts.GetByID(post.ID)
		require.NoError(t, err)
		assert.Empty(t, reloaded.GroupSlug)
	})

	t.Run("update missing", func(t *testing.T) {
		err := repos.Posts.Update(&models.Post{ID: 9999, Author: "leo", Text: "x", CreatedAt: base})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repos.Posts.GetByID(9999)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("delete cascades comments", func(t *testing.T) {
		comment := &models.Comment{PostID: second.ID, Author: "leo", Text: "hi", CreatedAt: base}
		require.NoError(t, repos.Comments.Create(comment))

		require.NoError(t, repos.Posts.Delete(second.ID))

		_, err := repos.Posts.GetByID(second.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repos.Comments.GetByID(comment.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		comments, err := repos.Comments.ListByPost(second.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)

		assert.ErrorIs(t, repos.Posts.Delete(second.ID), repositories.ErrNotFound)
	})
}

func testPostPages(t *testing.T, repos *repositories.Repositories) {
	Seed(t, repos, []string{"leo", "anna", "ivan"}, []string{"cats"})

	// 15 posts by leo, every third one in cats, then 3 by anna.
	for i := 0; i < 15; i++ {
		p := &models.Post{Author: "leo", Text: fmt.Sprintf("leo %d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if i%3 == 0 {
			p.GroupSlug = "cats"
		}
		require.NoError(t, repos.Posts.Create(p))
	}
	for i := 0; i < 3; i++ {
		p := &models.Post{Author: "anna", Text: fmt.Sprintf("anna %d", i), CreatedAt: base.Add(time.Hour + time.Duration(i)*time.Minute)}
		require.NoError(t, repos.Posts.Create(p))
	}

	tests := []struct {
		name      string
		filter    repositories.PostFilter
		page      int
		wantTotal int
		wantLen   int
		wantPage  int
		wantPages int
		wantFirst string
	}{
		{"all first page", repositories.AllPosts(), 1, 18, 10, 1, 2, "anna 2"},
		{"all second page", repositories.AllPosts(), 2, 18, 8, 2, 2, "leo 7"},
		{"all clamps high", repositories.AllPosts(), 99, 18, 8, 2, 2, "leo 7"},
		{"author first page", repositories.PostsBy("leo"), 1, 15, 10, 1, 2, "leo 14"},
		{"author second page", repositories.PostsBy("leo"), 2, 15, 5, 2, 2, "leo 4"},
		{"group", repositories.PostsInGroup("cats"), 1, 5, 5, 1, 1, "leo 12"},
		{"followed", repositories.PostsByAny([]string{"anna"}), 1, 3, 3, 1, 1, "anna 2"},
		{"followed none", repositories.PostsByAny(nil), 1, 0, 0, 1, 1, ""},
		{"author without posts", repositories.PostsBy("ivan"), 3, 0, 0, 1, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repos.Posts.ListPage(tt.filter, 10, tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.wantLen, page.Len())
			assert.Equal(t, tt.wantPage, page.Number)
			assert.Equal(t, tt.wantPages, page.NumPages)
			assert.NotNil(t, page.Items)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, page.Items[0].Text)
			}
			for i := 1; i < page.Len(); i++ {
				assert.Greater(t, page.Items[i-1].ID, page.Items[i].ID, "newest first")
			}

			n, err := repos.Posts.Count(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, n)
		})
	}
}

func testComments(t *testing.T, repos *repositories.Repositories) {
	Seed(t, repos, []string{"leo", "anna"}, nil)
	post := &models.Post{Author: "leo", Text: "post", CreatedAt: base}
	require.NoError(t, repos.Posts.Create(post))

	for i, author := range []string{"anna", "leo", "anna"} {
		c := &models.Comment{PostID: post.ID, Author: author, Text: fmt.Sprintf("c%d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repos.Comments.Create(c))
		assert.Greater(t, c.ID, 0)
	}

	comments, err := repos.Comments.ListByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "c0", comments[0].Text, "oldest first")
	assert.Equal(t, "c2", comments[2].Text)

	got, err := repos.Comments.GetByID(comments[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", got.Author)
	assert.Equal(t, post.ID, got.PostID)

	err = repos.Comments.Create(&models.Comment{PostID: 9999, Author: "anna", Text: "lost", CreatedAt: base})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	empty, err := repos.Comments.ListByPost(9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testFollows(t *testing.T, repos *repositories.Repositories) {
	Seed(t, repos, []string{"leo", "anna", "ivan"}, nil)

	require.NoError(t, repos.Follows.Create(&models.Follow{User: "anna", Author: "leo", CreatedAt: base}))
	require.NoError(t, repos.Follows.Create(&models.Follow{User: "anna", Author: "leo", CreatedAt: base}), "idempotent")
	require.NoError(t, repos.Follows.Create(&models.Follow{User: "anna", Author: "ivan", CreatedAt: base}))
	require.NoError(t, repos.Follows.Create(&models.Follow{User: "ivan", Author: "leo", CreatedAt: base}))

	err := repos.Follows.Create(&models.Follow{User: "leo", Author: "leo", CreatedAt: base})
	assert.ErrorIs(t, err, models.ErrSelfFollow)

	ok, err := repos.Follows.Exists("anna", "leo")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Follows.Exists("leo", "anna")
	require.NoError(t, err)
	assert.False(t, ok, "edges are directed")

	following, err := repos.Follows.ListFollowing("anna")
	require.NoError(t, err)
	assert.Equal(t, []string{"ivan", "leo"}, following)

	followers, err := repos.Follows.CountFollowers("leo")
	require.NoError(t, err)
	assert.Equal(t, 2, followers)
	count, err := repos.Follows.CountFollowing("anna")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repos.Follows.Delete("anna", "leo"))
	require.NoError(t, repos.Follows.Delete("anna", "leo"), "idempotent")

	ok, err = repos.Follows.Exists("anna", "leo")
	require.NoError(t, err)
	assert.False(t, ok)
	followers, err = repos.Follows.CountFollowers("leo")
	require.NoError(t, err)
	assert.Equal(t, 1, followers)

	none, err := repos.Follows.ListFollowing("leo")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testConcurrentCreates(t *testing.T, repos *repositories.Repositories) {
	Seed(t, repos, []string{"leo", "anna"}, nil)
	target := &models.Post{Author: "leo", Text: "target", CreatedAt: base}
	require.NoError(t, repos.Posts.Create(target))

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*workers)
	postIDs := make(chan int, workers)
	commentIDs := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			p := &models.Post{Author: "anna", Text: fmt.Sprintf("post %d", i), CreatedAt: base}
			if err := repos.Posts.Create(p); err != nil {
				errs <- err
				return
			}
			postIDs <- p.ID
		}(i)
		go func(i int) {
			defer wg.Done()
			c := &models.Comment{PostID: target.ID, Author: "anna", Text: fmt.Sprintf("comment %d", i), CreatedAt: base}
			if err := repos.Comments.Create(c); err != nil {
				errs <- err
				return
			}
			commentIDs <- c.ID
		}(i)
	}
	wg.Wait()
	close(errs)
	close(postIDs)
	close(commentIDs)

	for err := range errs {
		assert.NoError(t, err)
	}
	seen := make(map[int]bool)
	for id := range postIDs {
		assert.False(t, seen[id], "duplicate post id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
	seen = make(map[int]bool)
	for id := range commentIDs {
		assert.False(t, seen[id], "duplicate comment id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)

	n, err := repos.Posts.Count(repositories.PostsBy("anna"))
	require.NoError(t, err)
	assert.Equal(t, workers, n)
	comments, err := repos.Comments.ListByPost(target.ID)
	require.NoError(t, err)
	assert.Len(t, comments, workers)
}
