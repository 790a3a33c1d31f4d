package service

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"yatube/app/cache"
	"yatube/app/clock"
	"yatube/app/config"
	"yatube/app/repositories"
	"yatube/app/repositories/sqlite"
	"yatube/app/repositories/sqlite/migrations"
	"yatube/app/services"
)

// defaultCacheItems bounds the ristretto cache when max_items is unset.
const defaultCacheItems = 1000

// openStorage opens the configured backend. The Badger handle is returned
// for backup and restore and is nil for SQLite.
func openStorage(cfg config.StorageConfig) (*repositories.Repositories, *badger.DB, error) {
	switch cfg.Type {
	case "badger", "":
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("badger storage requires a path")
		}
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating storage directory: %w", err)
		}
		db, err := repositories.OpenBadger(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewBadgerRepositories(db), db, nil

	case "memory":
		db, err := repositories.OpenBadger("")
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewBadgerRepositories(db), db, nil

	case "sqlite":
		db, err := openSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		// An in-memory database starts empty every time.
		if cfg.Path == ":memory:" {
			if err := migrations.Up(db); err != nil {
				db.Close()
				return nil, nil, err
			}
		} else if err := migrations.CheckStatus(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("database schema out of date (run 'yatube db migrate'): %w", err)
		}
		return sqlite.NewRepositories(db), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}

// migrateStorage brings a SQLite schema up to date. Badger needs no
// migrations and reports false.
func migrateStorage(cfg config.StorageConfig) (bool, error) {
	if cfg.Type != "sqlite" {
		return false, nil
	}
	db, err := openSQLite(cfg.Path)
	if err != nil {
		return false, err
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		return false, err
	}
	return true, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite storage requires a path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}
	return sqlite.Open(path)
}

// newPageCache builds the home feed cache. The returned func, when not nil,
// releases the cache.
func newPageCache(cfg config.CacheConfig, clk clock.Clock) (cache.Cache[*services.FeedPage], func(), error) {
	switch cfg.Type {
	case "memory", "":
		return cache.NewMemory[*services.FeedPage](clk), nil, nil
	case "ristretto":
		maxItems := cfg.MaxItems
		if maxItems < 1 {
			maxItems = defaultCacheItems
		}
		c, err := cache.NewRistretto[*services.FeedPage](maxItems)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case "none":
		return cache.Nop[*services.FeedPage]{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache type: %q", cfg.Type)
	}
}
