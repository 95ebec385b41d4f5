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

var _ repository.CommentRepository = (*CommentStore)(nil)

// CommentStore reads and writes the comments table.
type CommentStore struct {
	conn *sql.DB
}

const commentSelect = `
	SELECT c.id, c.body, c.author_id, c.post_id, COALESCE(u.name, ''), COALESCE(u.email, '')
	FROM comments c
	LEFT JOIN users u ON u.id = c.author_id`

// Create inserts a comment and sets comment.ID.
//
// Both references are checked by the foreign keys: a missing post or author
// is reported as apperror.ErrNotFound and nothing is stored.
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO comments (body, author_id, post_id)
		 VALUES (?, ?, ?)
		 RETURNING id`,
		comment.Body,
		comment.AuthorID,
		comment.PostID,
	).Scan(&comment.ID)
	if err != nil {
		if constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return apperror.NotFound("post", comment.PostID)
		}
		return fmt.Errorf("sqlite: creating comment on post %d: %w", comment.PostID, err)
	}
	return nil
}

// GetByID retrieves a single comment.
func (s *CommentStore) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	c, err := scanComment(s.conn.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return c, nil
}

// ListByPost returns a post's comments in the order they were written.
func (s *CommentStore) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := s.conn.QueryContext(ctx,
		commentSelect+` WHERE c.post_id = ? ORDER BY c.id`, postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

func scanComment(row rowScanner) (*model.Comment, error) {
	var c model.Comment
	if err := row.Scan(
		&c.ID, &c.Body, &c.AuthorID, &c.PostID, &c.AuthorName, &c.AuthorEmail,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
