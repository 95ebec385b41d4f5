// Package handler translates HTTP requests into service calls and renders
// the result as HTML pages or, for the admin endpoints, JSON.
//
// Handlers hold no business rules. They parse query parameters and forms,
// call a service, and map the outcome:
//
//	success                → redirect (after POST) or page
//	apperror.ErrValidation → same form again, 422, messages next to fields
//	apperror.ErrNotFound   → 404 page
//	apperror.ErrForbidden  → 403 page
//	anything else          → 500 page, details only in the log
//
// Conflict and Unauthorized are handled where they occur (registration and
// login) since each has its own page to go back to.
package handler

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/auth"
	"github.com/sakif/bloghub/internal/markdown"
	"github.com/sakif/bloghub/internal/model"
)

// View is the data every page template receives.
type View struct {
	Title  string
	User   *model.User
	Flash  string
	Form   map[string]string // submitted or prefilled form values
	Errors map[string]string // per-field validation messages
	Data   map[string]any    // page-specific values
}

// Renderer executes page templates inside the shared layout.
//
// Each page is parsed together with layout.html into its own template set,
// so every page can define "content" without clashing with the others.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses every *.html under dir in fsys. layout.html is the
// frame; every other file becomes a page named after the file.
func NewRenderer(fsys fs.FS, dir string, logger *slog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"markdown": markdown.HTML,
		"gravatar": gravatar,
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("handler: listing templates: %w", err)
	}

	layout := path.Join(dir, "layout.html")
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layout {
			continue
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, layout, file)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("handler: no page templates in %s", dir)
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Page renders the named page with status. The current user and any pending
// flash message are filled in from the request.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, v View) {
	t, ok := rd.pages[name]
	if !ok {
		rd.logger.Error("unknown template", slog.String("name", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if v.User == nil {
		v.User, _ = auth.UserFromContext(r.Context())
	}
	if v.Flash == "" {
		v.Flash = popFlash(w, r)
	}

	// Render into a buffer first so a template error can still produce a
	// clean 500 instead of half a page.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Error renders the error page for err with the matching status.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, title := http.StatusInternalServerError, "Something went wrong"
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status, title = http.StatusNotFound, "Not found"
	case errors.Is(err, apperror.ErrForbidden):
		status, title = http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, title = http.StatusUnauthorized, "Not logged in"
	case errors.Is(err, apperror.ErrValidation):
		status, title = http.StatusUnprocessableEntity, "Invalid input"
	case errors.Is(err, apperror.ErrConflict):
		status, title = http.StatusConflict, "Conflict"
	}

	message := "An internal error occurred. Please try again later."
	if status == http.StatusInternalServerError {
		rd.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	} else if msg, ok := apperror.Message(err); ok {
		message = msg
	}

	rd.Page(w, r, status, "error", View{
		Title: title,
		Data: map[string]any{
			"Status":  status,
			"Message": message,
		},
	})
}

// Refuse is the auth.RefuseFunc used by the route guards.
func (rd *Renderer) Refuse(w http.ResponseWriter, r *http.Request, err error) {
	rd.Error(w, r, err)
}

// gravatar returns the avatar URL for an email: size 30, rating g, retro default.
func gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=30&d=retro&r=g"
}
