package handler

import "net/http"

// PageHandler serves the pages that only greet the visitor.
type PageHandler struct {
	render *Renderer
}

func NewPageHandler(render *Renderer) *PageHandler {
	return &PageHandler{render: render}
}

// Home is the public front page.
//
// HTTP: GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, r, http.StatusOK, "index", View{Title: "Blog Hub"})
}

// Domain is the landing page after sign-in. status=new greets a freshly
// registered user, anything else a returning one.
//
// HTTP: GET /domain?status=new|returning
func (h *PageHandler) Domain(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, r, http.StatusOK, "domain", View{
		Title: "Welcome",
		Data:  map[string]any{"New": r.URL.Query().Get("status") == "new"},
	})
}
