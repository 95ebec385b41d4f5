package handler

import (
	"errors"
	"net/http"

	"github.com/sakif/bloghub/internal/apperror"
	"github.com/sakif/bloghub/internal/service"
)

const msgContactSent = "Thanks for your message, it has been sent."

// ContactHandler serves the contact form.
type ContactHandler struct {
	contact *service.ContactService
	render  *Renderer
}

func NewContactHandler(contact *service.ContactService, render *Renderer) *ContactHandler {
	return &ContactHandler{contact: contact, render: render}
}

// Form shows the contact form.
//
// HTTP: GET /contact
func (h *ContactHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.render.Page(w, r, http.StatusOK, "contact", View{Title: "Contact"})
}

// Send mails the message to the site owner and goes home.
//
// HTTP: POST /contact
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	err := h.contact.Send(r.Context(), service.ContactInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	})
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/", msgContactSent)
	case errors.Is(err, apperror.ErrValidation):
		h.render.Page(w, r, http.StatusUnprocessableEntity, "contact", View{
			Title:  "Contact",
			Form:   formValues(r, "name", "email", "subject", "message"),
			Errors: apperror.FieldErrors(err),
		})
	default:
		h.render.Error(w, r, err)
	}
}
