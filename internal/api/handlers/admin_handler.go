package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
	"github.com/lmoraleda/fintrack-be/internal/auth"
	"github.com/lmoraleda/fintrack-be/internal/services"
)

// AdminHandler handles the admin-only user management surface. Every
// operation re-checks the admin flag against current state before acting.
type AdminHandler struct {
	users services.UserServiceProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users services.UserServiceProvider) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers handles listing all users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r, "admin.listUsers") {
		return
	}

	users, err := h.users.ListUsers()
	if err != nil {
		respondError(w, r, "admin.listUsers", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Promote handles granting admin rights to a user.
func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, true)
}

// Demote handles revoking admin rights from a user.
func (h *AdminHandler) Demote(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, false)
}

func (h *AdminHandler) setAdmin(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	operation := "admin.promote"
	if !isAdmin {
		operation = "admin.demote"
	}
	if !h.requireAdmin(w, r, operation) {
		return
	}

	userID := chi.URLParam(r, "id")
	user, err := h.users.SetAdmin(userID, isAdmin)
	if err != nil {
		respondError(w, r, operation, err)
		return
	}

	log.Info().Str("user_id", userID).Bool("is_admin", isAdmin).Msg("Admin flag changed")
	respondJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request, operation string) bool {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, r, operation, apperr.Unauthenticated("missing auth token"))
		return false
	}
	if err := h.users.RequireAdmin(subject); err != nil {
		respondError(w, r, operation, err)
		return false
	}
	return true
}
