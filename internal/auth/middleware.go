package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/model"
)

// SessionCookie is the name of the cookie holding the session token.
const SessionCookie = "session"

// contextKey is private so no other package can read or overwrite the
// values this package stores in a request context.
type contextKey string

const userKey contextKey = "user"

// UserLookup is the slice of the user store the session middleware needs.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Session resolves the session cookie into a stored user and attaches it to
// the request context. It never refuses a request: a missing, expired or
// forged token, or a token for a user that no longer exists, leaves the
// request anonymous. Refusal is the job of the guards.
func Session(tokens *TokenService, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				ClearSessionCookie(w, r.TLS != nil)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, apperror.ErrNotFound) {
					logger.Error("resolving session user",
						slog.Int64("user_id", userID),
						slog.String("error", err.Error()),
					)
				}
				ClearSessionCookie(w, r.TLS != nil)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the logged-in user, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// SetSessionCookie stores token in an HttpOnly cookie that expires with it.
//
// SameSite=Lax keeps the cookie off cross-site POSTs, so another site cannot
// submit forms as the logged-in user.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
