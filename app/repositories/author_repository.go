package repositories

import (
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerAuthorRepository implements AuthorRepository using BadgerDB
type BadgerAuthorRepository struct {
	db *badger.DB
}

// NewBadgerAuthorRepository creates a new BadgerAuthorRepository
func NewBadgerAuthorRepository(db *badger.DB) *BadgerAuthorRepository {
	return &BadgerAuthorRepository{db: db}
}

// Create stores a new author. Usernames are unique.
func (r *BadgerAuthorRepository) Create(author *models.Author) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := []byte(AuthorKeyPrefix + author.Username)
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}

		data, err := marshalEntity(author)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetByUsername retrieves an author by username
func (r *BadgerAuthorRepository) GetByUsername(username string) (*models.Author, error) {
	var author models.Author
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, []byte(AuthorKeyPrefix+username), &author)
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// List returns every author ordered by username.
func (r *BadgerAuthorRepository) List() ([]*models.Author, error) {
	var authors []*models.Author
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(AuthorKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var author models.Author
			if err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &author)
			}); err != nil {
				return err
			}
			authors = append(authors, &author)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return authors, nil
}
