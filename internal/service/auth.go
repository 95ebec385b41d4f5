package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/auth"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/repository"
	"github.com/sakif/bloghub/internal/validate"
)

// Messages shown to the user. Login names which of email or password was
// wrong; that is the only account information it gives away.
const (
	MsgEmailTaken      = "You've already signed up with that email, log in instead!"
	MsgUnknownEmail    = "That email does not exist, please try again."
	MsgWrongPassword   = "Password incorrect, please try again."
	MsgNoGitHubAccount = "No account is registered with the email of that GitHub profile. Register first."
	MsgGitHubNoEmail   = "Your GitHub account has no verified email address."
	MsgGitHubDisabled  = "Sign in with GitHub is not available."
	MsgPasswordTooLong = "Password must be at most 72 bytes."
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// GitHubExchanger completes the GitHub OAuth flow. *auth.GitHubProvider
// implements it.
type GitHubExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// Session is a logged-in user plus the signed token for the session cookie.
type Session struct {
	User  *model.User
	Token string
}

// AuthService registers users and turns credentials into sessions.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordHasher
	tokens    *auth.TokenService
	github    GitHubExchanger // nil when GitHub sign-in is not configured
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordHasher,
	tokens *auth.TokenService,
	github GitHubExchanger,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		github:    github,
		logger:    logger,
	}
}

// SessionTTL is the lifetime of issued sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// Register creates a user and logs them in.
//
// A taken email is reported as apperror.ErrConflict with MsgEmailTaken and
// no user is created. The store's UNIQUE constraint backs up the pre-check
// when two registrations race.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.ConflictMessage(MsgEmailTaken)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	// max=72 in the tag counts characters; bcrypt's limit is in bytes.
	hash, err := s.passwords.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperror.ValidationFailed("password", MsgPasswordTooLong)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ConflictMessage(MsgEmailTaken)
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return s.issue(user)
}

// Login checks the password of the account with the given email.
// A session is issued if and only if the password matches the stored hash.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(MsgUnknownEmail)
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperror.Unauthorized(MsgWrongPassword)
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	return s.issue(user)
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (s *AuthService) GitHubEnabled() bool {
	return s.github != nil
}

// GitHubAuthURL returns where to send the browser to start GitHub sign-in.
func (s *AuthService) GitHubAuthURL(state string) (string, error) {
	if s.github == nil {
		return "", apperror.Forbidden(MsgGitHubDisabled)
	}
	return s.github.AuthURL(state), nil
}

// LoginWithGitHub completes GitHub sign-in. The verified GitHub email must
// belong to a registered user; no account is created here.
func (s *AuthService) LoginWithGitHub(ctx context.Context, code string) (*Session, error) {
	if s.github == nil {
		return nil, apperror.Forbidden(MsgGitHubDisabled)
	}

	ghUser, err := s.github.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, auth.ErrNoVerifiedEmail) {
			return nil, apperror.Unauthorized(MsgGitHubNoEmail)
		}
		return nil, fmt.Errorf("service/auth: GitHub exchange: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, ghUser.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(MsgNoGitHubAccount)
		}
		return nil, fmt.Errorf("service/auth: looking up GitHub user: %w", err)
	}

	s.logger.Info("user logged in via GitHub",
		slog.Int64("user_id", user.ID),
		slog.String("github_login", ghUser.Login),
	)
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*Session, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing session for user %d: %w", user.ID, err)
	}
	return &Session{User: user, Token: token}, nil
}
