package handler

import (
	"encoding/base64"
	"net/http"
)

const flashCookie = "flash"

// setFlash stores a one-time message shown on the next rendered page.
func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending message, if any, and clears it.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	msg, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}

// redirectWithFlash sets a flash message and redirects with 303 See Other.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, to, msg string) {
	setFlash(w, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
