package apperror

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// WriteJSON serializes `data` to JSON and writes it with the given `status`.
// A nil `data` writes the status line only, avoiding a literal "null" body.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already on the wire, so all we can do is record it.
		logrus.WithError(err).Error("failed to encode response body")
	}
}

// WriteError converts any error into the standardized response.
//
// Authentication failures (AuthError) are answered with a bare 401 and no body.
// Everything else gets the `{code, description, fields}` JSON body. Errors that are
// not *AppError values are treated as internal errors.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := FromError(err)
	if !ok {
		appErr = NewInternalError("an unexpected error occurred", err)
	}

	status := appErr.StatusCode()
	entry := logrus.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"code":       appErr.Code,
		"request_id": middleware.GetReqID(r.Context()),
	})
	switch {
	case status >= http.StatusInternalServerError:
		entry.WithError(appErr).Error("request failed")
	case IsUnauthorizedError(appErr):
		entry.Warn(appErr.Message)
	case IsValidationError(appErr):
		entry.WithField("fields", appErr.Fields).Debug(appErr.Message)
	default:
		entry.Debug(appErr.Message)
	}

	if IsAuthError(appErr) {
		w.WriteHeader(status)
		return
	}
	WriteJSON(w, status, appErr.ToResponse())
}
