// Package repository declares the Entity Store: the persistence operations the
// services depend on. Implementations live in sub-packages (see sqlite/).
//
// Every mutation is durable when the call returns; there are no transactions
// spanning calls. Lookups of a missing id return an apperror.ErrNotFound.
package repository

import (
	"context"

	"github.com/sakif/bloghub/internal/model"
)

// PostQuery selects posts. The zero value selects every post.
// Results are always ordered by date descending, newest id first within a day.
type PostQuery struct {
	AuthorID int64 // 0 = any author
}

type UserRepository interface {
	// Create assigns user.ID and user.Role and persists the user. The first user
	// ever stored becomes an admin. Returns apperror.ErrConflict on a duplicate email.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns every user ordered by name.
	List(ctx context.Context) ([]model.User, error)
	// Delete removes the user together with their posts and comments.
	Delete(ctx context.Context, id int64) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context, q PostQuery) ([]model.Post, error)
	// Update overwrites title, subtitle, body and date.
	Update(ctx context.Context, post *model.Post) error
	// Delete removes the post together with its comments.
	Delete(ctx context.Context, id int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	// ListByPost returns the comments of a post, oldest first.
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
}
