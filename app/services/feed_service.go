package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yatube/app/cache"
	"yatube/app/models"
	"yatube/app/pagination"
	"yatube/app/repositories"
)

// FeedPage is one page of posts, newest first.
type FeedPage = pagination.Page[*models.Post]

// GroupFeed is a group with one page of its posts.
type GroupFeed struct {
	Group *models.Group `json:"group"`
	Page  *FeedPage     `json:"page"`
}

// ProfileFeed is an author's page as seen by a requester.
type ProfileFeed struct {
	Author         *models.Author `json:"author"`
	PostCount      int            `json:"post_count"`
	Following      bool           `json:"following"`
	Followers      int            `json:"followers"`
	FollowingCount int            `json:"following_count"`
	Page           *FeedPage      `json:"page"`
}

// FeedOptions configures FeedService.
type FeedOptions struct {
	PerPage  int
	CacheTTL time.Duration
}

// FeedService assembles the paginated post lists.
type FeedService struct {
	posts   repositories.PostRepository
	groups  repositories.GroupRepository
	authors repositories.AuthorRepository
	graph   *FollowService
	cache   cache.Cache[*FeedPage]
	opts    FeedOptions
	logger  *slog.Logger
}

// NewFeedService creates a new FeedService. A nil cache disables caching.
func NewFeedService(repos *repositories.Repositories, graph *FollowService, c cache.Cache[*FeedPage],
	opts FeedOptions, logger *slog.Logger) *FeedService {
	if opts.PerPage < 1 {
		opts.PerPage = pagination.DefaultPerPage
	}
	if c == nil {
		c = cache.Nop[*FeedPage]{}
	}
	return &FeedService{
		posts:   repos.Posts,
		groups:  repos.Groups,
		authors: repos.Authors,
		graph:   graph,
		cache:   c,
		opts:    opts,
		logger:  logger,
	}
}

// PerPage is the configured page size.
func (s *FeedService) PerPage() int {
	return s.opts.PerPage
}

// IndexCacheKey names the cached index page.
func IndexCacheKey(page, perPage int) string {
	return fmt.Sprintf("index:page=%d:per=%d", page, perPage)
}

// List returns one page of posts matching filter with their groups loaded.
func (s *FeedService) List(filter repositories.PostFilter, page int) (*FeedPage, error) {
	p, err := s.posts.ListPage(filter, s.opts.PerPage, page)
	if err != nil {
		return nil, fmt.Errorf("listing posts (%s): %w", filter, err)
	}
	if err := s.attachGroups(p.Items); err != nil {
		return nil, err
	}
	return p, nil
}

// ListAll returns the global feed. Pages are cached for the configured TTL
// and are not invalidated by writes. Entries are keyed by the clamped page
// number, so out-of-range requests share the last page's entry.
func (s *FeedService) ListAll(ctx context.Context, page int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	key := IndexCacheKey(page, s.opts.PerPage)
	if p, ok := s.cache.Get(key); ok {
		s.logger.DebugContext(ctx, "index cache hit", "key", key)
		return p, nil
	}

	p, err := s.List(repositories.AllPosts(), page)
	if err != nil {
		return nil, err
	}
	if p.Number != page {
		key = IndexCacheKey(p.Number, s.opts.PerPage)
		if cached, ok := s.cache.Get(key); ok {
			s.logger.DebugContext(ctx, "index cache hit", "key", key, "requested", page)
			return cached, nil
		}
	}
	s.cache.Set(key, p, s.opts.CacheTTL)
	return p, nil
}

// ListByGroup returns a page of the group's posts. A missing group and a
// group without posts are both ErrNotFound.
func (s *FeedService) ListByGroup(ctx context.Context, slug string, page int) (*GroupFeed, error) {
	group, err := s.groups.GetBySlug(slug)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", slug, err)
	}

	p, err := s.List(repositories.PostsInGroup(slug), page)
	if err != nil {
		return nil, err
	}
	if p.Total == 0 {
		s.logger.DebugContext(ctx, "group has no posts", "group", slug)
		return nil, fmt.Errorf("group %s has no posts: %w", slug, repositories.ErrNotFound)
	}
	return &GroupFeed{Group: group, Page: p}, nil
}

// ListByAuthor returns the author's profile page. requester may be empty for
// anonymous visitors.
func (s *FeedService) ListByAuthor(ctx context.Context, username, requester string, page int) (*ProfileFeed, error) {
	author, err := s.authors.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("author %s: %w", username, err)
	}

	p, err := s.List(repositories.PostsBy(username), page)
	if err != nil {
		return nil, err
	}

	following, err := s.graph.IsFollowing(requester, username)
	if err != nil {
		return nil, err
	}
	followers, followingCount, err := s.graph.Counts(username)
	if err != nil {
		return nil, err
	}

	return &ProfileFeed{
		Author:         author,
		PostCount:      p.Total,
		Following:      following,
		Followers:      followers,
		FollowingCount: followingCount,
		Page:           p,
	}, nil
}

// ListFollowed returns posts by everyone requester follows.
func (s *FeedService) ListFollowed(ctx context.Context, requester string, page int) (*FeedPage, error) {
	filter, err := s.graph.FollowedAuthorsOf(requester)
	if err != nil {
		return nil, err
	}
	return s.List(filter, page)
}

// attachGroups loads each post's group, fetching every slug once.
func (s *FeedService) attachGroups(posts []*models.Post) error {
	groups := map[string]*models.Group{}
	for _, post := range posts {
		if !post.InGroup() {
			continue
		}
		group, seen := groups[post.GroupSlug]
		if !seen {
			g, err := s.groups.GetBySlug(post.GroupSlug)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("loading group %s: %w", post.GroupSlug, err)
			}
			group = g
			groups[post.GroupSlug] = g
		}
		post.Group = group
	}
	return nil
}
