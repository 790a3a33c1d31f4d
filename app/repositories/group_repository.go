package repositories

import (
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db *badger.DB
}

// NewBadgerGroupRepository creates a new BadgerGroupRepository
func NewBadgerGroupRepository(db *badger.DB) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db}
}

// Create stores a new group. Slugs are unique.
func (r *BadgerGroupRepository) Create(group *models.Group) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := []byte(GroupKeyPrefix + group.Slug)
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}

		data, err := marshalEntity(group)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetBySlug retrieves a group by slug
func (r *BadgerGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, []byte(GroupKeyPrefix+slug), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns every group ordered by slug.
func (r *BadgerGroupRepository) List() ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(GroupKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var group models.Group
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &group)
			}); err != nil {
				return err
			}
			groups = append(groups, &group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}
