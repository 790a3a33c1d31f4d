package sqlite

import (
	"database/sql"
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"
)

// AuthorRepository implements repositories.AuthorRepository on SQLite.
type AuthorRepository struct {
	db *sql.DB
}

func (r *AuthorRepository) Create(author *models.Author) error {
	_, err := r.db.Exec(
		`INSERT INTO authors (username, full_name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		author.Username, author.FullName, author.PasswordHash, author.CreatedAt.UTC(),
	)
	if isConstraint(err) {
		return repositories.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting author: %w", err)
	}
	return nil
}

func (r *AuthorRepository) GetByUsername(username string) (*models.Author, error) {
	var a models.Author
	err := r.db.QueryRow(
		`SELECT username, full_name, password_hash, created_at FROM authors WHERE username = ?`, username,
	).Scan(&a.Username, &a.FullName, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err, "getting author")
	}
	return &a, nil
}

func (r *AuthorRepository) List() ([]*models.Author, error) {
	rows, err := r.db.Query(`SELECT username, full_name, password_hash, created_at FROM authors ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	defer rows.Close()

	var authors []*models.Author
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.Username, &a.FullName, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		authors = append(authors, &a)
	}
	return authors, rows.Err()
}

// GroupRepository implements repositories.GroupRepository on SQLite.
type GroupRepository struct {
	db *sql.DB
}

func (r *GroupRepository) Create(group *models.Group) error {
	_, err := r.db.Exec(
		`INSERT INTO post_groups (slug, title, description) VALUES (?, ?, ?)`,
		group.Slug, group.Title, group.Description,
	)
	if isConstraint(err) {
		return repositories.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting group: %w", err)
	}
	return nil
}

func (r *GroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var g models.Group
	err := r.db.QueryRow(
		`SELECT slug, title, description FROM post_groups WHERE slug = ?`, slug,
	).Scan(&g.Slug, &g.Title, &g.Description)
	if err != nil {
		return nil, notFound(err, "getting group")
	}
	return &g, nil
}

func (r *GroupRepository) List() ([]*models.Group, error) {
	rows, err := r.db.Query(`SELECT slug, title, description FROM post_groups ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.Slug, &g.Title, &g.Description); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}
