package repositories

import (
	"strings"
	"time"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerFollowRepository implements FollowRepository using BadgerDB.
// Each edge is stored twice: under follow:<user>:<author> and under the
// reverse index follower:<author>:<user>.
type BadgerFollowRepository struct {
	db *badger.DB
}

// NewBadgerFollowRepository creates a new BadgerFollowRepository
func NewBadgerFollowRepository(db *badger.DB) *BadgerFollowRepository {
	return &BadgerFollowRepository{db: db}
}

// Create stores the edge unless it already exists.
func (r *BadgerFollowRepository) Create(follow *models.Follow) error {
	if err := follow.Validate(); err != nil {
		return err
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}

	return update(r.db, func(txn *badger.Txn) error {
		key := followKey(follow.User, follow.Author)
		exists, err := keyExists(txn, key)
		if err != nil || exists {
			return err
		}

		data, err := marshalEntity(follow)
		if err != nil {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(followerKey(follow.Author, follow.User), []byte(follow.User))
	})
}

// Delete removes the edge if present.
func (r *BadgerFollowRepository) Delete(user, author string) error {
	return update(r.db, func(txn *badger.Txn) error {
		if err := txn.Delete(followKey(user, author)); err != nil {
			return err
		}
		return txn.Delete(followerKey(author, user))
	})
}

func (r *BadgerFollowRepository) Exists(user, author string) (bool, error) {
	var exists bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		exists, err = keyExists(txn, followKey(user, author))
		return err
	})
	return exists, err
}

// ListFollowing returns the usernames user follows, ordered by username.
func (r *BadgerFollowRepository) ListFollowing(user string) ([]string, error) {
	authors := []string{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := followKey(user, "")
		for _, k := range prefixKeys(txn, prefix) {
			authors = append(authors, strings.TrimPrefix(string(k), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *BadgerFollowRepository) CountFollowers(author string) (int, error) {
	return r.countPrefix(followerKey(author, ""))
}

func (r *BadgerFollowRepository) CountFollowing(user string) (int, error) {
	return r.countPrefix(followKey(user, ""))
}

func (r *BadgerFollowRepository) countPrefix(prefix []byte) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = len(prefixKeys(txn, prefix))
		return nil
	})
	return n, err
}
