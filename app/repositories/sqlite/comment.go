package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"
)

// CommentRepository implements repositories.CommentRepository on SQLite.
type CommentRepository struct {
	db *sql.DB
}

func (r *CommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRow(`SELECT 1 FROM posts WHERE id = ?`, comment.PostID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking post: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO comments (post_id, author, text, created_at) VALUES (?, ?, ?, ?)`,
		comment.PostID, comment.Author, comment.Text, comment.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading comment id: %w", err)
	}
	comment.ID = int(id)
	return tx.Commit()
}

func (r *CommentRepository) GetByID(id int) (*models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRow(
		`SELECT id, post_id, author, text, created_at FROM comments WHERE id = ?`, id,
	).Scan(&c.ID, &c.PostID, &c.Author, &c.Text, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "getting comment")
	}
	return &c, nil
}

func (r *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	rows, err := r.db.Query(
		`SELECT id, post_id, author, text, created_at FROM comments WHERE post_id = ? ORDER BY id`, postID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
