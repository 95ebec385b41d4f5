package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/bloghub/internal/apperror"
)

// writeJSON sends data as JSON with the given status. Headers must be set
// before WriteHeader, which must come before the body.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeJSONError sends {"error": {kind: message}} with the status matching err.
// Unknown errors become a generic 500 and the detail stays in the log.
func writeJSONError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, kind := http.StatusInternalServerError, "Internal Error"
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status, kind = http.StatusNotFound, "Not Found"
	case errors.Is(err, apperror.ErrForbidden):
		status, kind = http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperror.ErrValidation):
		status, kind = http.StatusUnprocessableEntity, "Invalid"
	}

	message := "An internal error occurred."
	if status == http.StatusInternalServerError {
		logger.Error("admin request failed", slog.String("error", err.Error()))
	} else if msg, ok := apperror.Message(err); ok {
		message = msg
	}

	writeJSON(w, logger, status, map[string]any{
		"error": map[string]string{kind: message},
	})
}

// queryID reads a positive integer id from the query string. A missing or
// malformed id cannot resolve to anything and is reported as NotFound.
func queryID(r *http.Request, param, resource string) (int64, error) {
	raw := r.URL.Query().Get(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound(resource, raw)
	}
	return id, nil
}

// formValues copies the named fields of a parsed form, for re-rendering.
func formValues(r *http.Request, names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = r.PostFormValue(n)
	}
	return out
}
