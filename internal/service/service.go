// Package service holds the business rules of the blog.
//
// LAYERS:
//
//	handler (HTTP)  → parses forms, renders pages, maps errors to status codes
//	service         → validates input, checks ownership, orchestrates the store
//	repository      → reads and writes rows
//
// Services take repository interfaces, never *sqlite.DB, so tests run them
// against the in-memory fakes in fakes_test.go. They know nothing about HTTP:
// failures come back as *apperror.AppError values and the handler decides
// what the user sees.
package service

import (
	"time"

	"github.com/sakif/bloghub/internal/model"
)

// Clock returns the current time. Post dates are taken from it so tests can
// pin "today".
type Clock func() time.Time

func today(now Clock) string {
	return model.DateOf(now())
}
