package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
	"github.com/lmoraleda/fintrack-be/internal/models"
	"github.com/lmoraleda/fintrack-be/internal/services"
)

// CategoryHandler handles HTTP requests for category management.
type CategoryHandler struct {
	service services.CategoryServiceProvider
	users   services.UserServiceProvider
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider, users services.UserServiceProvider) *CategoryHandler {
	return &CategoryHandler{service: service, users: users}
}

// CategoryPayload is the expected JSON body for creating a category.
type CategoryPayload struct {
	Name string `json:"name"`
}

// Create handles creating a new category for the caller.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "category.create", err)
		return
	}

	var payload CategoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, "category.create", apperr.Validation("invalid request body"))
		return
	}

	category, err := h.service.Create(user.ID, payload.Name)
	if err != nil {
		respondError(w, r, "category.create", err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// GetAll handles listing the caller's categories (plus global ones).
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "category.list", err)
		return
	}

	categories, err := h.service.List(user.ID)
	if err != nil {
		respondError(w, r, "category.list", err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// Delete handles deleting an owned category. Referencing transactions are
// detached, not deleted.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "category.delete", err)
		return
	}

	if err := h.service.Delete(user.ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, "category.delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
