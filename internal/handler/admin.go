package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/auth"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/service"
)

// AdminKeyField is the form field the admin JSON endpoints read the shared
// key from.
const AdminKeyField = "admin_key"

// AdminHandler serves the admin area: the user list page and the JSON
// endpoints that look up or remove a user by ?user_id=.
//
// The JSON endpoints answer GET with the admin key form and act on POST once
// the route guards have accepted the session and the key.
type AdminHandler struct {
	users  *service.UserService
	render *Renderer
	logger *slog.Logger
}

func NewAdminHandler(users *service.UserService, render *Renderer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{users: users, render: render, logger: logger}
}

// Users lists every account by name.
//
// HTTP: GET /user
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Page(w, r, http.StatusOK, "show_user", View{
		Title: "Users",
		Data:  map[string]any{"Users": users},
	})
}

// DeleteUser removes an account from the user list page.
//
// HTTP: POST /user/delete?user_id=N
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "user_id", "user")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	actor, _ := auth.UserFromContext(r.Context())
	if err := h.users.Delete(r.Context(), actor, id); err != nil {
		if msg, ok := apperror.Message(err); ok && errors.Is(err, apperror.ErrForbidden) {
			redirectWithFlash(w, r, "/user", msg)
			return
		}
		h.render.Error(w, r, err)
		return
	}
	redirectWithFlash(w, r, "/user", "User deleted.")
}

// KeyForm asks for the admin key before one of the JSON endpoints acts.
//
// HTTP: GET /user/data, GET /user/posts, GET /delete/user and post
func (h *AdminHandler) KeyForm(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, r, http.StatusOK, "admin_key", View{
		Title: "Admin Key",
		Data: map[string]any{
			"Action": r.URL.RequestURI(),
			"Field":  AdminKeyField,
		},
	})
}

// UserData returns the user with the given id as {"users": [...]}. The list
// is empty when no such user exists.
//
// HTTP: POST /user/data?user_id=N
func (h *AdminHandler) UserData(w http.ResponseWriter, r *http.Request) {
	users := []model.User{}

	id, err := queryID(r, "user_id", "user")
	if err == nil {
		var u *model.User
		u, err = h.users.Get(r.Context(), id)
		if err == nil {
			users = append(users, *u)
		}
	}
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		writeJSONError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{"users": users})
}

// UserPosts returns the posts written by the user as {"posts": [...]}, or
// an explicit not-found payload when there are none.
//
// HTTP: POST /user/posts?user_id=N
func (h *AdminHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	var posts []model.Post
	if id, err := queryID(r, "user_id", "user"); err == nil {
		posts, err = h.users.Posts(r.Context(), id)
		if err != nil {
			writeJSONError(w, h.logger, err)
			return
		}
	}

	if len(posts) == 0 {
		writeJSON(w, h.logger, http.StatusOK, map[string]any{
			"error": map[string]string{"Not Found": "No any post yet."},
		})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"posts": posts})
}

// DeleteUserJSON removes the user with their posts and comments.
//
// HTTP: POST /delete/user and post?user_id=N
func (h *AdminHandler) DeleteUserJSON(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "user_id", "user")
	if err != nil {
		writeJSONError(w, h.logger, err)
		return
	}
	actor, _ := auth.UserFromContext(r.Context())
	if err := h.users.Delete(r.Context(), actor, id); err != nil {
		writeJSONError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"result": map[string]string{"success": "Successfully Deleted."},
	})
}

// RefuseJSON is the auth.RefuseFunc for the JSON endpoints: a refused
// request gets a JSON error body instead of an HTML page.
func (h *AdminHandler) RefuseJSON(w http.ResponseWriter, _ *http.Request, err error) {
	writeJSONError(w, h.logger, err)
}
