// Package sqlite implements the repositories on a SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"yatube/app/repositories"
	"yatube/app/repositories/sqlite/migrations"
)

// Open opens and configures a SQLite connection. path can be a file path or
// ":memory:".
func Open(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// NewRepositories wires every SQLite repository to db. Closing the bundle
// closes db. The schema must already be migrated.
func NewRepositories(db *sql.DB) *repositories.Repositories {
	return repositories.NewRepositories(
		&AuthorRepository{db: db},
		&GroupRepository{db: db},
		&PostRepository{db: db},
		&CommentRepository{db: db},
		&FollowRepository{db: db},
		db.Close,
	)
}

// OpenRepositories opens path, applies pending migrations and returns the bundle.
func OpenRepositories(path string) (*repositories.Repositories, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewRepositories(db), nil
}

// isConstraint reports whether err is a uniqueness or primary-key violation.
func isConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// notFound maps sql.ErrNoRows to repositories.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}
