package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/repositories/repotest"
)

func newTestRepos(t *testing.T) *repositories.Repositories {
	repos, err := OpenRepositories(":memory:")
	require.NoError(t, err)
	return repos
}

func TestSQLiteRepositories(t *testing.T) {
	repotest.Run(t, newTestRepos)
}

func TestSQLiteOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yatube.db")

	repos, err := OpenRepositories(path)
	require.NoError(t, err)
	repotest.Seed(t, repos, []string{"leo"}, []string{"cats"})
	post := &models.Post{Author: "leo", Text: "kept", GroupSlug: "cats", CreatedAt: time.Now()}
	require.NoError(t, repos.Posts.Create(post))
	require.NoError(t, repos.Close())

	repos, err = OpenRepositories(path)
	require.NoError(t, err)
	defer repos.Close()

	got, err := repos.Posts.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Text)
	assert.Equal(t, "cats", got.GroupSlug)
}

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter repositories.PostFilter
		where  string
		args   []any
	}{
		{"all", repositories.AllPosts(), "", nil},
		{"author", repositories.PostsBy("leo"), "WHERE author = ?", []any{"leo"}},
		{"group", repositories.PostsInGroup("cats"), "WHERE group_slug = ?", []any{"cats"}},
		{"any", repositories.PostsByAny([]string{"leo", "anna"}), "WHERE author IN (?, ?)", []any{"anna", "leo"}},
		{"none", repositories.PostsByAny(nil), "WHERE 0", nil},
		{"combined", repositories.PostsBy("leo").InGroup("cats"), "WHERE author = ? AND group_slug = ?", []any{"leo", "cats"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := whereClause(tt.filter)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestPostGroupRequiresExistingGroup(t *testing.T) {
	repos := newTestRepos(t)
	defer repos.Close()
	repotest.Seed(t, repos, []string{"leo"}, nil)

	err := repos.Posts.Create(&models.Post{Author: "leo", Text: "x", GroupSlug: "ghost", CreatedAt: time.Now()})
	assert.Error(t, err)
}
