package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
	"github.com/lmoraleda/fintrack-be/internal/models"
	"github.com/lmoraleda/fintrack-be/internal/services"
)

// TransactionHandler handles HTTP requests for the transaction ledger.
type TransactionHandler struct {
	service services.TransactionServiceProvider
	users   services.UserServiceProvider
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service services.TransactionServiceProvider, users services.UserServiceProvider) *TransactionHandler {
	return &TransactionHandler{service: service, users: users}
}

// TransactionPayload is the expected JSON body for create and update.
type TransactionPayload struct {
	Amount      float64 `json:"amount"`
	CategoryID  *string `json:"categoryId"`
	Description string  `json:"description"`
}

// Create handles inserting a new transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "transaction.create", err)
		return
	}

	var payload TransactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, "transaction.create", apperr.Validation("invalid request body"))
		return
	}

	txn, err := h.service.Create(user.ID, payload.Amount, payload.CategoryID, payload.Description)
	if err != nil {
		respondError(w, r, "transaction.create", err)
		return
	}
	respondJSON(w, http.StatusCreated, txn)
}

// Get handles retrieving a single owned transaction.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "transaction.get", err)
		return
	}

	txn, err := h.service.Get(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, "transaction.get", err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

// GetAll handles the filtered, paginated listing of the caller's ledger.
// Query params: from, to (RFC 3339), category, limit, offset.
func (h *TransactionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "transaction.list", err)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		respondError(w, r, "transaction.list", err)
		return
	}

	txns, err := h.service.List(user.ID, filter)
	if err != nil {
		respondError(w, r, "transaction.list", err)
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	respondJSON(w, http.StatusOK, txns)
}

// Update handles mutating an owned transaction in place.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "transaction.update", err)
		return
	}

	var payload TransactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, "transaction.update", apperr.Validation("invalid request body"))
		return
	}

	txn, err := h.service.Update(user.ID, chi.URLParam(r, "id"), payload.Amount, payload.CategoryID, payload.Description)
	if err != nil {
		respondError(w, r, "transaction.update", err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

// Delete handles the permanent deletion of an owned transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "transaction.delete", err)
		return
	}

	if err := h.service.Delete(user.ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, "transaction.delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles the income/expense/net aggregation for the caller.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "transaction.summary", err)
		return
	}

	summary, err := h.service.Summarize(user.ID)
	if err != nil {
		respondError(w, r, "transaction.summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Export streams the caller's full ledger as a CSV download.
func (h *TransactionHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		respondError(w, r, "transaction.export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := h.service.ExportCSV(user.ID, w); err != nil {
		// Nothing has been written yet when the ledger is empty, so the
		// error response still goes out clean.
		w.Header().Del("Content-Disposition")
		respondError(w, r, "transaction.export", err)
		return
	}
}

func parseListFilter(r *http.Request) (services.ListFilter, error) {
	var filter services.ListFilter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperr.Validation("invalid 'from' date")
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperr.Validation("invalid 'to' date")
		}
		filter.To = &t
	}
	if v := q.Get("category"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			return filter, apperr.Validation("limit must be between 1 and 100")
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, apperr.Validation("offset must be non-negative")
		}
		filter.Offset = offset
	}
	return filter, nil
}
