package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/repository"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ repository.PostRepository = (*PostStore)(nil)

// PostStore reads and writes the blogpost table.
type PostStore struct {
	conn *sql.DB
}

// postSelect joins the author so listings can show a name. LEFT JOIN keeps
// posts whose author_id is NULL in older databases.
const postSelect = `
	SELECT p.id, p.title, p.subtitle, p.body, p.date, COALESCE(p.author_id, 0), COALESCE(u.name, '')
	FROM blogpost p
	LEFT JOIN users u ON u.id = p.author_id`

// Create inserts a post and sets post.ID. The caller sets Date.
// An author id that does not exist comes back as apperror.ErrNotFound.
func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO blogpost (title, subtitle, body, date, author_id)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`,
		post.Title,
		post.Subtitle,
		post.Body,
		post.Date,
		post.AuthorID,
	).Scan(&post.ID)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return apperror.NotFound("user", post.AuthorID)
		}
		return fmt.Errorf("sqlite: creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post by id, with its author's name.
func (s *PostStore) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	p, err := scanPost(s.conn.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return p, nil
}

// List returns the posts matching q, newest date first.
//
// date is stored as YYYY-MM-DD so ORDER BY date sorts chronologically.
// Posts on the same day come newest id first.
func (s *PostStore) List(ctx context.Context, q repository.PostQuery) ([]model.Post, error) {
	query := postSelect
	var args []any
	if q.AuthorID != 0 {
		query += ` WHERE p.author_id = ?`
		args = append(args, q.AuthorID)
	}
	query += ` ORDER BY p.date DESC, p.id DESC`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

// Update overwrites the editable columns. author_id never changes.
func (s *PostStore) Update(ctx context.Context, post *model.Post) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE blogpost
		 SET title = ?, subtitle = ?, body = ?, date = ?
		 WHERE id = ?`,
		post.Title,
		post.Subtitle,
		post.Body,
		post.Date,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}
	return checkAffected(result, apperror.NotFound("post", post.ID))
}

// Delete removes a post; its comments are removed by ON DELETE CASCADE.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM blogpost WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}
	return checkAffected(result, apperror.NotFound("post", id))
}

func scanPost(row rowScanner) (*model.Post, error) {
	var p model.Post
	if err := row.Scan(
		&p.ID, &p.Title, &p.Subtitle, &p.Body, &p.Date, &p.AuthorID, &p.AuthorName,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
