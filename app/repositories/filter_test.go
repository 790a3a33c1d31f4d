package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"yatube/app/models"
)

func TestPostFilterMatches(t *testing.T) {
	post := &models.Post{ID: 1, Author: "leo", GroupSlug: "cats"}
	ungrouped := &models.Post{ID: 2, Author: "anna"}

	tests := []struct {
		name   string
		filter PostFilter
		post   *models.Post
		want   bool
	}{
		{"all matches", AllPosts(), post, true},
		{"all matches ungrouped", AllPosts(), ungrouped, true},
		{"author match", PostsBy("leo"), post, true},
		{"author mismatch", PostsBy("anna"), post, false},
		{"group match", PostsInGroup("cats"), post, true},
		{"group mismatch", PostsInGroup("dogs"), post, false},
		{"group on ungrouped", PostsInGroup("cats"), ungrouped, false},
		{"any of authors", PostsByAny([]string{"anna", "leo"}), post, true},
		{"not in authors", PostsByAny([]string{"anna"}), post, false},
		{"no authors", PostsByAny(nil), post, false},
		{"combined", PostsBy("leo").InGroup("cats"), post, true},
		{"combined mismatch", PostsBy("leo").InGroup("dogs"), post, false},
		{"nil post", AllPosts(), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.post))
		})
	}
}

func TestPostFilterEmpty(t *testing.T) {
	assert.False(t, AllPosts().Empty())
	assert.False(t, PostsBy("leo").Empty())
	assert.True(t, PostsByAny(nil).Empty())
	assert.True(t, PostsByAny([]string{}).Empty())
	assert.False(t, PostsByAny([]string{"leo"}).Empty())
	assert.True(t, PostFilter{Author: "anna", Authors: []string{"leo"}}.Empty())
}

func TestPostFilterIsAll(t *testing.T) {
	assert.True(t, AllPosts().IsAll())
	assert.True(t, PostFilter{}.IsAll())
	assert.False(t, PostsBy("leo").IsAll())
	assert.False(t, PostsInGroup("cats").IsAll())
	assert.False(t, PostsByAny(nil).IsAll())
	assert.False(t, PostsByAny([]string{"leo"}).IsAll())
}

func TestPostFilterString(t *testing.T) {
	assert.Equal(t, "all", AllPosts().String())
	assert.Equal(t, "author=leo", PostsBy("leo").String())
	assert.Equal(t, "group=cats", PostsInGroup("cats").String())
	assert.Equal(t, "authors=[anna,leo]", PostsByAny([]string{"leo", "anna"}).String())
	assert.Equal(t, "authors=[]", PostsByAny(nil).String())
	assert.Equal(t, "author=leo:group=cats", PostsBy("leo").InGroup("cats").String())
}

func TestPostsByAnyCopiesInput(t *testing.T) {
	names := []string{"b", "a"}
	f := PostsByAny(names)
	names[0] = "z"
	assert.Equal(t, []string{"a", "b"}, f.Authors)
}
