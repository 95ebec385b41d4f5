package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/sakif/bloghub/internal/apperror"
)

// Guard decides whether a request may reach its handler. Check returns nil
// to let the request through, or an error describing the refusal (usually an
// *apperror.AppError wrapping ErrForbidden).
type Guard interface {
	Check(r *http.Request) error
}

// GuardFunc adapts a plain function to the Guard interface.
type GuardFunc func(r *http.Request) error

func (f GuardFunc) Check(r *http.Request) error { return f(r) }

// RefuseFunc writes the response for a refused request.
type RefuseFunc func(w http.ResponseWriter, r *http.Request, err error)

// Require builds a middleware from an ordered guard list. Guards run in the
// order given; the first refusal is handed to refuse and the rest are skipped.
//
//	r.With(auth.Require(refuse, auth.Authenticated(), auth.Admin())).Get("/user", h.ListUsers)
func Require(refuse RefuseFunc, guards ...Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, g := range guards {
				if err := g.Check(r); err != nil {
					refuse(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticated passes when the Session middleware resolved a stored user.
// Anonymous requests are refused with Forbidden, not redirected.
func Authenticated() Guard {
	return GuardFunc(func(r *http.Request) error {
		if _, ok := UserFromContext(r.Context()); !ok {
			return apperror.Forbidden("You need to be logged in to do that.")
		}
		return nil
	})
}

// Admin passes when the current user holds the admin role.
func Admin() Guard {
	return GuardFunc(func(r *http.Request) error {
		u, _ := UserFromContext(r.Context())
		if !u.IsAdmin() {
			return apperror.Forbidden("Only the administrator can do that.")
		}
		return nil
	})
}

// SharedSecret passes when the form field named field equals secret. An empty
// secret refuses every request, so an unconfigured key never opens the door.
func SharedSecret(field, secret string) Guard {
	return GuardFunc(func(r *http.Request) error {
		if secret == "" {
			return apperror.Forbidden("The admin key is not configured.")
		}
		got := r.PostFormValue(field)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return apperror.Forbidden("Wrong admin key.")
		}
		return nil
	})
}
