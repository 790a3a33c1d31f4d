package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"yatube/app/models"
	"yatube/app/pagination"
	"yatube/app/repositories"
)

const postColumns = `id, author, text, group_slug, image, created_at`

// PostRepository implements repositories.PostRepository on SQLite.
type PostRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	var group sql.NullString
	if err := row.Scan(&p.ID, &p.Author, &p.Text, &group, &p.Image, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.GroupSlug = group.String
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// whereClause renders filter as a WHERE clause with its arguments.
func whereClause(filter repositories.PostFilter) (string, []any) {
	if filter.Empty() {
		return "WHERE 0", nil
	}

	var conds []string
	var args []any
	if filter.Author != "" {
		conds = append(conds, "author = ?")
		args = append(args, filter.Author)
	}
	if filter.Group != "" {
		conds = append(conds, "group_slug = ?")
		args = append(args, filter.Group)
	}
	if filter.Authors != nil {
		marks := make([]string, len(filter.Authors))
		for i, a := range filter.Authors {
			marks[i] = "?"
			args = append(args, a)
		}
		conds = append(conds, "author IN ("+strings.Join(marks, ", ")+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	res, err := r.db.Exec(
		`INSERT INTO posts (author, text, group_slug, image, created_at) VALUES (?, ?, ?, ?, ?)`,
		post.Author, post.Text, nullable(post.GroupSlug), post.Image, post.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading post id: %w", err)
	}
	post.ID = int(id)
	return nil
}

func (r *PostRepository) GetByID(id int) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "getting post")
	}
	return post, nil
}

// ListPage counts and selects in one read transaction so the total and the
// page agree.
func (r *PostRepository) ListPage(filter repositories.PostFilter, perPage, page int) (*pagination.Page[*models.Post], error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	where, args := whereClause(filter)

	var total int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}

	w := pagination.NewWindow(total, perPage, page)
	rows, err := tx.Query(
		`SELECT `+postColumns+` FROM posts `+where+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		append(args, w.Limit(), w.Offset())...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, w.Limit())
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pagination.NewPage(w, posts), tx.Commit()
}

func (r *PostRepository) Count(filter repositories.PostFilter) (int, error) {
	where, args := whereClause(filter)
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM posts `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) Update(post *models.Post) error {
	res, err := r.db.Exec(
		`UPDATE posts SET text = ?, group_slug = ?, image = ? WHERE id = ?`,
		post.Text, nullable(post.GroupSlug), post.Image, post.ID,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	return requireRow(res)
}

// Delete removes the post; comments go with it through ON DELETE CASCADE.
func (r *PostRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
