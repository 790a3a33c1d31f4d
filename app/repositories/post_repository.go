package repositories

import (
	"fmt"

	"yatube/app/models"
	"yatube/app/pagination"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// storedPost drops the loaded relations before a post is written.
func storedPost(post *models.Post) *models.Post {
	p := *post
	p.Group = nil
	p.Comments = nil
	return &p
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	return update(r.db, func(txn *badger.Txn) error {
		// Get next ID
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		data, err := marshalEntity(storedPost(post))
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// postHeader is the part of a stored post a filter looks at.
type postHeader struct {
	Author    string `json:"author"`
	GroupSlug string `json:"group,omitempty"`
}

// matchingKeys returns the keys of posts matching filter, newest first.
// Unfiltered walks read keys only; filtered walks decode just the header.
func matchingKeys(txn *badger.Txn, filter PostFilter) ([][]byte, error) {
	if filter.Empty() {
		return nil, nil
	}

	all := filter.IsAll()
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = !all
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	prefix := []byte(PostKeyPrefix)
	for it.Seek(append([]byte(PostKeyPrefix), 0xff)); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		if !all {
			var h postHeader
			err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &h)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if !filter.Matches(&models.Post{Author: h.Author, GroupSlug: h.GroupSlug}) {
				continue
			}
		}
		keys = append(keys, item.KeyCopy(nil))
	}
	return keys, nil
}

// ListPage returns one page of the posts matching filter, newest first.
// The count and the page are read in the same transaction, and only the
// posts on the page are decoded in full.
func (r *BadgerPostRepository) ListPage(filter PostFilter, perPage, page int) (*pagination.Page[*models.Post], error) {
	var result *pagination.Page[*models.Post]
	err := r.db.View(func(txn *badger.Txn) error {
		keys, err := matchingKeys(txn, filter)
		if err != nil {
			return err
		}

		w := pagination.NewWindow(len(keys), perPage, page)
		start, end := w.Bounds()
		posts := make([]*models.Post, 0, end-start)
		for _, key := range keys[start:end] {
			var post models.Post
			if err := getEntity(txn, key, &post); err != nil {
				return err
			}
			posts = append(posts, &post)
		}
		result = pagination.NewPage(w, posts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of posts matching filter.
func (r *BadgerPostRepository) Count(filter PostFilter) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		keys, err := matchingKeys(txn, filter)
		n = len(keys)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := postKey(post.ID)

		// Verify post exists
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		data, err := marshalEntity(storedPost(post))
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a post by ID along with its comments
func (r *BadgerPostRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := postKey(id)

		// Verify post exists
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		for _, ck := range prefixKeys(txn, commentPrefix(id)) {
			var comment models.Comment
			if err := getEntity(txn, ck, &comment); err != nil {
				return err
			}
			if err := txn.Delete(commentIDKey(comment.ID)); err != nil {
				return err
			}
			if err := txn.Delete(ck); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
}
