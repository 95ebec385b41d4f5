package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/repository"
)

const MsgCannotDeleteSelf = "The administrator cannot delete their own account."

// UserService backs the admin area. Access is checked by the route guards;
// the service trusts that the caller is an admin.
type UserService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, posts repository.PostRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, posts: posts, logger: logger}
}

// List returns every user ordered by name.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/user: listing: %w", err)
	}
	return users, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Posts returns the posts written by the user, newest date first. An unknown
// user simply has no posts.
func (s *UserService) Posts(ctx context.Context, authorID int64) ([]model.Post, error) {
	posts, err := s.posts.List(ctx, repository.PostQuery{AuthorID: authorID})
	if err != nil {
		return nil, fmt.Errorf("service/user: posts of %d: %w", authorID, err)
	}
	return posts, nil
}

// Delete removes a user with their posts and comments. An admin cannot
// remove their own account, which would leave the blog without one.
func (s *UserService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if actor != nil && actor.ID == id {
		return apperror.Forbidden(MsgCannotDeleteSelf)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	attrs := []any{slog.Int64("user_id", id)}
	if actor != nil {
		attrs = append(attrs, slog.Int64("actor_id", actor.ID))
	}
	s.logger.Info("user deleted", attrs...)
	return nil
}
