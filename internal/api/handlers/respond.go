package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
	"github.com/lmoraleda/fintrack-be/internal/auth"
	"github.com/lmoraleda/fintrack-be/internal/models"
	"github.com/lmoraleda/fintrack-be/internal/services"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError maps an application error to its status and a single-line
// message. Unexpected errors become a generic 500; the detail is only logged.
func respondError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	appErr := apperr.From(err)

	event := log.Warn()
	if appErr.Kind == apperr.KindInternal {
		event = log.Error()
	}
	logCtx := event.Err(err).Str("operation", operation).Str("path", r.URL.Path)
	if subject, ok := auth.SubjectFromContext(r.Context()); ok {
		logCtx = logCtx.Str("user", subject)
	}
	logCtx.Msg("Request failed")

	respondJSON(w, appErr.Status(), map[string]string{"error": appErr.Message})
}

// currentUser resolves the authenticated request to its user record. The
// token middleware only proves a login happened; this is the single identity
// lookup every scoped operation builds on.
func currentUser(r *http.Request, users services.UserServiceProvider) (models.User, error) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		return models.User{}, apperr.Unauthenticated("missing auth token")
	}
	return users.GetByUsername(subject)
}
