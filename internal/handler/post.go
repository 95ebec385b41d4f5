package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/auth"
	"github.com/sakif/bloghub/internal/model"
	"github.com/sakif/bloghub/internal/service"
)

// PostHandler serves the post pages: the public list and post view with its
// comment form, the author's own list, and the add, edit and delete forms.
//
// Access to the author pages is declared on the routes; the author-or-admin
// rule for edit and delete lives in service.PostService.
type PostHandler struct {
	posts  *service.PostService
	render *Renderer
}

func NewPostHandler(posts *service.PostService, render *Renderer) *PostHandler {
	return &PostHandler{posts: posts, render: render}
}

// List shows every post, newest first.
//
// HTTP: GET /blogs
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Page(w, r, http.StatusOK, "blogs", View{
		Title: "All Posts",
		Data:  map[string]any{"Posts": posts},
	})
}

// Show renders one post with its comments.
//
// HTTP: GET /show_blog?blog_id=N
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, http.StatusOK, View{})
}

// Comment adds a comment to the post and shows the post again.
//
// HTTP: POST /show_blog?blog_id=N
//
// An anonymous visitor is sent to the login page and nothing is stored.
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "blog_id", "post")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	actor, _ := auth.UserFromContext(r.Context())
	_, err = h.posts.AddComment(r.Context(), actor, id, service.CommentInput{
		Body: r.PostFormValue("body"),
	})
	switch {
	case err == nil:
		http.Redirect(w, r, showPath(id), http.StatusSeeOther)
	case errors.Is(err, apperror.ErrUnauthorized):
		msg, _ := apperror.Message(err)
		redirectWithFlash(w, r, "/login", msg)
	case errors.Is(err, apperror.ErrValidation):
		h.show(w, r, http.StatusUnprocessableEntity, View{
			Form:   formValues(r, "body"),
			Errors: apperror.FieldErrors(err),
		})
	default:
		h.render.Error(w, r, err)
	}
}

func (h *PostHandler) show(w http.ResponseWriter, r *http.Request, status int, v View) {
	id, err := queryID(r, "blog_id", "post")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	pv, err := h.posts.View(r.Context(), id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}

	actor, _ := auth.UserFromContext(r.Context())
	v.Title = pv.Post.Title
	v.Data = map[string]any{
		"Post":      pv.Post,
		"Comments":  pv.Comments,
		"CanModify": pv.Post.CanModify(actor),
	}
	h.render.Page(w, r, status, "show_blog", v)
}

// Mine lists the posts of the logged-in user. The name in the path only
// makes the URL readable; the list always belongs to the session user.
//
// HTTP: GET /domain/blogger/{name}
func (h *PostHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	posts, err := h.posts.ListByAuthor(r.Context(), user.ID)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Page(w, r, http.StatusOK, "blogs", View{
		Title: "Posts by " + user.Name,
		Data: map[string]any{
			"Posts":  posts,
			"Author": chi.URLParam(r, "name"),
			"Own":    true,
		},
	})
}

// AddForm shows an empty post form with the author's name filled in.
//
// HTTP: GET /add_blog
func (h *PostHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	h.render.Page(w, r, http.StatusOK, "add_blog", View{
		Title: "New Post",
		Form:  map[string]string{"author": user.Name},
	})
}

// Add creates the post, dated today, and goes to the author's list.
//
// HTTP: POST /add_blog
func (h *PostHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	_, err := h.posts.Create(r.Context(), user, postInput(r))
	switch {
	case err == nil:
		http.Redirect(w, r, ownPostsPath(user), http.StatusSeeOther)
	case errors.Is(err, apperror.ErrValidation):
		form := formValues(r, "title", "subtitle", "body")
		form["author"] = user.Name
		h.render.Page(w, r, http.StatusUnprocessableEntity, "add_blog", View{
			Title:  "New Post",
			Form:   form,
			Errors: apperror.FieldErrors(err),
		})
	default:
		h.render.Error(w, r, err)
	}
}

// EditForm shows the post form filled with the current values.
//
// HTTP: GET /edit_blog?blog_id=N
func (h *PostHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "blog_id", "post")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	user, _ := auth.UserFromContext(r.Context())
	post, err := h.posts.GetForEdit(r.Context(), user, id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Page(w, r, http.StatusOK, "edit_blog", View{
		Title: "Edit Post",
		Form: map[string]string{
			"title":    post.Title,
			"subtitle": post.Subtitle,
			"body":     post.Body,
		},
		Data: map[string]any{"Post": post},
	})
}

// Edit overwrites the post and stamps it with today's date.
//
// HTTP: POST /edit_blog?blog_id=N
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "blog_id", "post")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	user, _ := auth.UserFromContext(r.Context())
	_, err = h.posts.Update(r.Context(), user, id, postInput(r))
	switch {
	case err == nil:
		http.Redirect(w, r, ownPostsPath(user), http.StatusSeeOther)
	case errors.Is(err, apperror.ErrValidation):
		h.render.Page(w, r, http.StatusUnprocessableEntity, "edit_blog", View{
			Title:  "Edit Post",
			Form:   formValues(r, "title", "subtitle", "body"),
			Errors: apperror.FieldErrors(err),
			Data:   map[string]any{"Post": &model.Post{ID: id}},
		})
	default:
		h.render.Error(w, r, err)
	}
}

// DeleteForm asks for a yes/no confirmation.
//
// HTTP: GET /delete?blog_id=N
func (h *PostHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "blog_id", "post")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	user, _ := auth.UserFromContext(r.Context())
	post, err := h.posts.GetForEdit(r.Context(), user, id)
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	h.render.Page(w, r, http.StatusOK, "confirm_delete", View{
		Title: "Delete Post",
		Data:  map[string]any{"Post": post},
	})
}

// Delete removes the post when the answer is yes. Either answer returns to
// the author's list.
//
// HTTP: POST /delete?blog_id=N
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "blog_id", "post")
	if err != nil {
		h.render.Error(w, r, err)
		return
	}
	user, _ := auth.UserFromContext(r.Context())
	_, err = h.posts.Delete(r.Context(), user, id, service.DeleteInput{
		Decision: r.PostFormValue("confirm"),
	})
	switch {
	case err == nil:
		http.Redirect(w, r, ownPostsPath(user), http.StatusSeeOther)
	case errors.Is(err, apperror.ErrValidation):
		post, getErr := h.posts.GetForEdit(r.Context(), user, id)
		if getErr != nil {
			h.render.Error(w, r, getErr)
			return
		}
		h.render.Page(w, r, http.StatusUnprocessableEntity, "confirm_delete", View{
			Title:  "Delete Post",
			Errors: apperror.FieldErrors(err),
			Data:   map[string]any{"Post": post},
		})
	default:
		h.render.Error(w, r, err)
	}
}

func postInput(r *http.Request) service.PostInput {
	return service.PostInput{
		Title:    r.PostFormValue("title"),
		Subtitle: r.PostFormValue("subtitle"),
		Body:     r.PostFormValue("body"),
	}
}

func showPath(id int64) string {
	return "/show_blog?blog_id=" + strconv.FormatInt(id, 10)
}

func ownPostsPath(u *model.User) string {
	return "/domain/blogger/" + url.PathEscape(u.Name)
}
