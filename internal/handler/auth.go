package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/auth"
	"github.com/sakif/bloghub/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler serves registration, login, logout and GitHub sign-in.
//
// Every successful sign-in ends the same way: the session token goes into
// the HttpOnly session cookie and the browser is sent to the landing page.
type AuthHandler struct {
	auth   *service.AuthService
	render *Renderer
	secure bool
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secure marks the session cookie
// Secure, which browsers only send over HTTPS.
func NewAuthHandler(svc *service.AuthService, render *Renderer, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   svc,
		render: render,
		secure: secure,
		logger: logger,
	}
}

// RegisterForm shows the registration form.
//
// HTTP: GET /register
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, r, http.StatusOK, "register", View{Title: "Register"})
}

// Register creates the account and logs the new user in.
//
// HTTP: POST /register
//
// A taken email sends the visitor to the login page with a flash message.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	in := service.RegisterInput{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	sess, err := h.auth.Register(r.Context(), in)
	switch {
	case err == nil:
		h.startSession(w, r, sess, "new")
	case errors.Is(err, apperror.ErrConflict):
		msg, _ := apperror.Message(err)
		redirectWithFlash(w, r, "/login", msg)
	case errors.Is(err, apperror.ErrValidation):
		h.render.Page(w, r, http.StatusUnprocessableEntity, "register", View{
			Title:  "Register",
			Form:   formValues(r, "name", "email"),
			Errors: apperror.FieldErrors(err),
		})
	default:
		h.render.Error(w, r, err)
	}
}

// LoginForm shows the login form.
//
// HTTP: GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, r, http.StatusOK, "login", View{
		Title: "Log In",
		Data:  map[string]any{"GitHub": h.auth.GitHubEnabled()},
	})
}

// Login checks the credentials and starts a session.
//
// HTTP: POST /login
//
// Wrong credentials re-render the form with 401 and the reason as the flash.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	in := service.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	sess, err := h.auth.Login(r.Context(), in)
	if err == nil {
		h.startSession(w, r, sess, "returning")
		return
	}

	v := View{
		Title: "Log In",
		Form:  formValues(r, "email"),
		Data:  map[string]any{"GitHub": h.auth.GitHubEnabled()},
	}
	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		v.Flash, _ = apperror.Message(err)
		h.render.Page(w, r, http.StatusUnauthorized, "login", v)
	case errors.Is(err, apperror.ErrValidation):
		v.Errors = apperror.FieldErrors(err)
		h.render.Page(w, r, http.StatusUnprocessableEntity, "login", v)
	default:
		h.render.Error(w, r, err)
	}
}

// Logout drops the session cookie and goes home.
//
// HTTP: GET /logout
//
// The session is a signed token with no server-side record, so logging out
// means forgetting the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GitHubLogin sends the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// A random state value goes both into a short-lived cookie and the
// authorization URL; the callback only proceeds when the two match.
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	url, err := h.auth.GitHubAuthURL(state)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GitHubCallback completes GitHub sign-in for an already registered email.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	sess, err := h.auth.LoginWithGitHub(r.Context(), code)
	if err != nil {
		if msg, ok := apperror.Message(err); ok && errors.Is(err, apperror.ErrUnauthorized) {
			redirectWithFlash(w, r, "/login", msg)
			return
		}
		h.render.Error(w, r, err)
		return
	}
	h.startSession(w, r, sess, "returning")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, sess *service.Session, status string) {
	auth.SetSessionCookie(w, sess.Token, h.auth.SessionTTL(), h.secure)
	http.Redirect(w, r, "/domain?status="+status, http.StatusSeeOther)
}
