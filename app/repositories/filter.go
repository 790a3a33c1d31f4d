package repositories

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"yatube/app/models"
)

// PostFilter selects posts for a list query. The zero value matches every
// post. Set fields are combined with AND.
type PostFilter struct {
	Author string
	Group  string
	// Authors restricts posts to any of the listed usernames. nil means no
	// restriction; an empty non-nil slice matches nothing.
	Authors []string
}

// AllPosts matches every post.
func AllPosts() PostFilter {
	return PostFilter{}
}

// PostsBy matches posts written by username.
func PostsBy(username string) PostFilter {
	return PostFilter{Author: username}
}

// PostsInGroup matches posts tagged with slug.
func PostsInGroup(slug string) PostFilter {
	return PostFilter{Group: slug}
}

// PostsByAny matches posts written by any of usernames. No usernames
// matches nothing.
func PostsByAny(usernames []string) PostFilter {
	authors := make([]string, len(usernames))
	copy(authors, usernames)
	sort.Strings(authors)
	return PostFilter{Authors: authors}
}

// InGroup narrows the filter to one group.
func (f PostFilter) InGroup(slug string) PostFilter {
	f.Group = slug
	return f
}

// IsAll reports whether the filter places no restriction at all.
func (f PostFilter) IsAll() bool {
	return f.Author == "" && f.Group == "" && f.Authors == nil
}

// Empty reports whether the filter can never match.
func (f PostFilter) Empty() bool {
	if f.Authors == nil {
		return false
	}
	if len(f.Authors) == 0 {
		return true
	}
	return f.Author != "" && !slices.Contains(f.Authors, f.Author)
}

// Matches reports whether p passes the filter.
func (f PostFilter) Matches(p *models.Post) bool {
	if p == nil {
		return false
	}
	if f.Author != "" && p.Author != f.Author {
		return false
	}
	if f.Group != "" && p.GroupSlug != f.Group {
		return false
	}
	if f.Authors != nil && !slices.Contains(f.Authors, p.Author) {
		return false
	}
	return true
}

// String is a stable description of the filter, usable as a cache key part.
func (f PostFilter) String() string {
	var parts []string
	if f.Author != "" {
		parts = append(parts, "author="+f.Author)
	}
	if f.Group != "" {
		parts = append(parts, "group="+f.Group)
	}
	if f.Authors != nil {
		parts = append(parts, fmt.Sprintf("authors=[%s]", strings.Join(f.Authors, ",")))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ":")
}
