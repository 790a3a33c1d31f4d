// Package mock provides in-memory repositories for tests.
package mock

import (
	"sort"
	"sync"

	"yatube/app/models"
	"yatube/app/pagination"
	"yatube/app/repositories"
)

// Store holds the state shared by the mock repositories. Records are copied
// in and out so callers cannot mutate stored state.
type Store struct {
	mutex         sync.RWMutex
	authors       map[string]models.Author
	groups        map[string]models.Group
	posts         map[int]models.Post
	comments      map[int]models.Comment
	follows       map[string]models.Follow
	nextPostID    int
	nextCommentID int

	// Err, when set, is returned by every operation.
	Err error
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.Clear()
	return s
}

// Clear drops every record.
func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.authors = make(map[string]models.Author)
	s.groups = make(map[string]models.Group)
	s.posts = make(map[int]models.Post)
	s.comments = make(map[int]models.Comment)
	s.follows = make(map[string]models.Follow)
	s.nextPostID = 1
	s.nextCommentID = 1
}

// Repositories exposes the store as a repositories bundle.
func (s *Store) Repositories() *repositories.Repositories {
	return repositories.NewRepositories(
		&AuthorRepository{s}, &GroupRepository{s}, &PostRepository{s},
		&CommentRepository{s}, &FollowRepository{s}, nil,
	)
}

// New returns a bundle over a fresh store.
func New() *repositories.Repositories {
	return NewStore().Repositories()
}

// AuthorRepository implementation
type AuthorRepository struct{ s *Store }

func (m *AuthorRepository) Create(author *models.Author) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if _, exists := m.s.authors[author.Username]; exists {
		return repositories.ErrAlreadyExists
	}
	m.s.authors[author.Username] = *author
	return nil
}

func (m *AuthorRepository) GetByUsername(username string) (*models.Author, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	author, exists := m.s.authors[username]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &author, nil
}

func (m *AuthorRepository) List() ([]*models.Author, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	var authors []*models.Author
	for _, a := range m.s.authors {
		author := a
		authors = append(authors, &author)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].Username < authors[j].Username })
	return authors, nil
}

// GroupRepository implementation
type GroupRepository struct{ s *Store }

func (m *GroupRepository) Create(group *models.Group) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if _, exists := m.s.groups[group.Slug]; exists {
		return repositories.ErrAlreadyExists
	}
	m.s.groups[group.Slug] = *group
	return nil
}

func (m *GroupRepository) GetBySlug(slug string) (*models.Group, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	group, exists := m.s.groups[slug]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &group, nil
}

func (m *GroupRepository) List() ([]*models.Group, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	var groups []*models.Group
	for _, g := range m.s.groups {
		group := g
		groups = append(groups, &group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Slug < groups[j].Slug })
	return groups, nil
}

// PostRepository implementation
type PostRepository struct{ s *Store }

func (m *PostRepository) Create(post *models.Post) error {
	post.BeforeCreate()

	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	post.ID = m.s.nextPostID
	m.s.nextPostID++
	m.s.posts[post.ID] = stored(post)
	return nil
}

func stored(post *models.Post) models.Post {
	p := *post
	p.Group = nil
	p.Comments = nil
	return p
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	post, exists := m.s.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

// matching returns posts passing filter, newest first. Caller holds the lock.
func (m *PostRepository) matching(filter repositories.PostFilter) []*models.Post {
	posts := []*models.Post{}
	if filter.Empty() {
		return posts
	}
	for _, p := range m.s.posts {
		post := p
		if filter.Matches(&post) {
			posts = append(posts, &post)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts
}

func (m *PostRepository) ListPage(filter repositories.PostFilter, perPage, page int) (*pagination.Page[*models.Post], error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	return pagination.Paginate(m.matching(filter), perPage, page), nil
}

func (m *PostRepository) Count(filter repositories.PostFilter) (int, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return 0, m.s.Err
	}
	return len(m.matching(filter)), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if _, exists := m.s.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.s.posts[post.ID] = stored(post)
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if _, exists := m.s.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.s.posts, id)
	for cid, c := range m.s.comments {
		if c.PostID == id {
			delete(m.s.comments, cid)
		}
	}
	return nil
}

// CommentRepository implementation
type CommentRepository struct{ s *Store }

func (m *CommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()

	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if _, exists := m.s.posts[comment.PostID]; !exists {
		return repositories.ErrNotFound
	}
	comment.ID = m.s.nextCommentID
	m.s.nextCommentID++
	m.s.comments[comment.ID] = *comment
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	comment, exists := m.s.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	comments := []*models.Comment{}
	for _, c := range m.s.comments {
		if c.PostID == postID {
			comment := c
			comments = append(comments, &comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// FollowRepository implementation
type FollowRepository struct{ s *Store }

func edge(user, author string) string {
	return user + ":" + author
}

func (m *FollowRepository) Create(follow *models.Follow) error {
	if err := follow.Validate(); err != nil {
		return err
	}
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	key := edge(follow.User, follow.Author)
	if _, exists := m.s.follows[key]; !exists {
		m.s.follows[key] = *follow
	}
	return nil
}

func (m *FollowRepository) Delete(user, author string) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	delete(m.s.follows, edge(user, author))
	return nil
}

func (m *FollowRepository) Exists(user, author string) (bool, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	_, exists := m.s.follows[edge(user, author)]
	return exists, nil
}

func (m *FollowRepository) ListFollowing(user string) ([]string, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	authors := []string{}
	for _, f := range m.s.follows {
		if f.User == user {
			authors = append(authors, f.Author)
		}
	}
	sort.Strings(authors)
	return authors, nil
}

func (m *FollowRepository) CountFollowers(author string) (int, error) {
	return m.count(func(f models.Follow) bool { return f.Author == author })
}

func (m *FollowRepository) CountFollowing(user string) (int, error) {
	return m.count(func(f models.Follow) bool { return f.User == user })
}

func (m *FollowRepository) count(match func(models.Follow) bool) (int, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	if m.s.Err != nil {
		return 0, m.s.Err
	}
	n := 0
	for _, f := range m.s.follows {
		if match(f) {
			n++
		}
	}
	return n, nil
}
