package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/repository"
	"github.com/sakif/bloghub/internal/validate"
)

const (
	MsgLoginToComment = "You need to login or register to comment."
	MsgNotYourPost    = "You can only change your own posts."
	MsgLoginToPost    = "You need to be logged in to write a post."
)

// Decision values of the delete confirmation form.
const (
	DecisionYes = "yes"
	DecisionNo  = "no"
)

// PostInput is the add and edit form. Body is Markdown.
type PostInput struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	Body     string `form:"body" validate:"required"`
}

// CommentInput is the comment form under a post.
type CommentInput struct {
	Body string `form:"body" validate:"required,max=5000"`
}

// DeleteInput is the confirmation form of a post deletion.
type DeleteInput struct {
	Decision string `form:"confirm" validate:"required,oneof=yes no"`
}

// PostView is a post with its comments, for the post page.
type PostView struct {
	Post     *model.Post
	Comments []model.Comment
}

// PostService handles posts and their comments.
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	now      Clock
	logger   *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	now Clock,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		now:      now,
		logger:   logger,
	}
}

// List returns every post, newest date first.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx, repository.PostQuery{})
	if err != nil {
		return nil, fmt.Errorf("service/post: listing: %w", err)
	}
	return posts, nil
}

// ListByAuthor returns the posts written by authorID, newest date first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	posts, err := s.posts.List(ctx, repository.PostQuery{AuthorID: authorID})
	if err != nil {
		return nil, fmt.Errorf("service/post: listing by author %d: %w", authorID, err)
	}
	return posts, nil
}

// View loads a post and its comments.
func (s *PostService) View(ctx context.Context, id int64) (*PostView, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/post: loading comments of %d: %w", id, err)
	}
	return &PostView{Post: post, Comments: comments}, nil
}

// Create stores a new post by actor, dated today.
func (s *PostService) Create(ctx context.Context, actor *model.User, in PostInput) (*model.Post, error) {
	if actor == nil {
		return nil, apperror.Forbidden(MsgLoginToPost)
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Body:     in.Body,
		Date:     today(s.now),
		AuthorID: actor.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: creating: %w", err)
	}
	post.AuthorName = actor.Name

	s.logger.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.Int64("author_id", actor.ID),
	)
	return post, nil
}

// GetForEdit loads a post the actor is allowed to change.
func (s *PostService) GetForEdit(ctx context.Context, actor *model.User, id int64) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.CanModify(actor) {
		return nil, apperror.Forbidden(MsgNotYourPost)
	}
	return post, nil
}

// Update overwrites title, subtitle and body, and resets the date to today.
// Only the author or an admin may edit.
func (s *PostService) Update(ctx context.Context, actor *model.User, id int64, in PostInput) (*model.Post, error) {
	post, err := s.GetForEdit(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Subtitle = in.Subtitle
	post.Body = in.Body
	post.Date = today(s.now)

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: updating %d: %w", id, err)
	}

	s.logger.Info("post updated",
		slog.Int64("post_id", post.ID),
		slog.Int64("actor_id", actor.ID),
	)
	return post, nil
}

// Delete removes the post when the decision is DecisionYes and reports
// whether it did. Comments on the post go with it.
func (s *PostService) Delete(ctx context.Context, actor *model.User, id int64, in DeleteInput) (bool, error) {
	if err := validate.Struct(in); err != nil {
		return false, err
	}
	if _, err := s.GetForEdit(ctx, actor, id); err != nil {
		return false, err
	}
	if in.Decision != DecisionYes {
		return false, nil
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("service/post: deleting %d: %w", id, err)
	}

	s.logger.Info("post deleted",
		slog.Int64("post_id", id),
		slog.Int64("actor_id", actor.ID),
	)
	return true, nil
}

// AddComment stores a comment by actor on post postID.
//
// The post must exist (apperror.ErrNotFound otherwise). An anonymous actor
// gets apperror.ErrUnauthorized with MsgLoginToComment and nothing is stored.
func (s *PostService) AddComment(ctx context.Context, actor *model.User, postID int64, in CommentInput) (*model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperror.Unauthorized(MsgLoginToComment)
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Body:     in.Body,
		AuthorID: actor.ID,
		PostID:   postID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/post: commenting on %d: %w", postID, err)
	}
	comment.AuthorName = actor.Name
	comment.AuthorEmail = actor.Email
	return comment, nil
}
