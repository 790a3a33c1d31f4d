package repositories

import (
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens the Badger database in dir. An empty dir opens an
// in-memory database that is lost on Close.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.
		WithLogger(nil).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", dir, err)
	}
	return db, nil
}

// NewBadgerRepositories wires every Badger repository to db. Closing the
// bundle closes db.
func NewBadgerRepositories(db *badger.DB) *Repositories {
	return NewRepositories(
		NewBadgerAuthorRepository(db),
		NewBadgerGroupRepository(db),
		NewBadgerPostRepository(db),
		NewBadgerCommentRepository(db),
		NewBadgerFollowRepository(db),
		db.Close,
	)
}

// Backup writes a full backup of db to w.
func Backup(db *badger.DB, w io.Writer) error {
	if _, err := db.Backup(w, 0); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup into db.
func Restore(db *badger.DB, r io.Reader) error {
	if err := db.Load(r, 256); err != nil {
		return fmt.Errorf("restoring database: %w", err)
	}
	return nil
}
