package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"yatube/app/models"
)

// FollowRepository implements repositories.FollowRepository on SQLite.
type FollowRepository struct {
	db *sql.DB
}

func (r *FollowRepository) Create(follow *models.Follow) error {
	if err := follow.Validate(); err != nil {
		return err
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO follows (follower, author, created_at) VALUES (?, ?, ?)`,
		follow.User, follow.Author, follow.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting follow: %w", err)
	}
	return nil
}

func (r *FollowRepository) Delete(user, author string) error {
	if _, err := r.db.Exec(`DELETE FROM follows WHERE follower = ? AND author = ?`, user, author); err != nil {
		return fmt.Errorf("deleting follow: %w", err)
	}
	return nil
}

func (r *FollowRepository) Exists(user, author string) (bool, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM follows WHERE follower = ? AND author = ?`, user, author).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking follow: %w", err)
	}
	return n > 0, nil
}

func (r *FollowRepository) ListFollowing(user string) ([]string, error) {
	rows, err := r.db.Query(`SELECT author FROM follows WHERE follower = ? ORDER BY author`, user)
	if err != nil {
		return nil, fmt.Errorf("listing follows: %w", err)
	}
	defer rows.Close()

	authors := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scanning follow: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *FollowRepository) CountFollowers(author string) (int, error) {
	return r.count(`SELECT COUNT(*) FROM follows WHERE author = ?`, author)
}

func (r *FollowRepository) CountFollowing(user string) (int, error) {
	return r.count(`SELECT COUNT(*) FROM follows WHERE follower = ?`, user)
}

func (r *FollowRepository) count(query, arg string) (int, error) {
	var n int
	if err := r.db.QueryRow(query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting follows: %w", err)
	}
	return n, nil
}
