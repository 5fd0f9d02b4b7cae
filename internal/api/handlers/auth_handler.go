package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
	"github.com/lmoraleda/fintrack-be/internal/auth"
	"github.com/lmoraleda/fintrack-be/internal/services"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// CredentialsPayload is the expected JSON body for register and login.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshPayload is the expected JSON body for token refresh.
type RefreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, "register", apperr.Validation("invalid request body"))
		return
	}

	user, err := h.users.Register(payload.Username, payload.Password)
	if err != nil {
		respondError(w, r, "register", err)
		return
	}

	log.Info().Str("username", user.Username).Msg("New user registered")
	respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, "login", apperr.Validation("invalid request body"))
		return
	}

	user, err := h.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		respondError(w, r, "login", err)
		return
	}

	accessToken, err := h.tokens.Issue(user.Username)
	if err != nil {
		respondError(w, r, "login", apperr.Internal(err))
		return
	}

	refreshToken, err := h.users.IssueRefreshToken(user.ID)
	if err != nil {
		respondError(w, r, "login", err)
		return
	}

	log.Info().Str("username", user.Username).Msg("User logged in")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken":  accessToken,
		"refreshToken": refreshToken.Token,
		"tokenType":    "bearer",
		"user":         user,
	})
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload RefreshPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.RefreshToken == "" {
		respondError(w, r, "refresh", apperr.Validation("invalid request body"))
		return
	}

	user, err := h.users.Refresh(payload.RefreshToken)
	if err != nil {
		respondError(w, r, "refresh", err)
		return
	}

	accessToken, err := h.tokens.Issue(user.Username)
	if err != nil {
		respondError(w, r, "refresh", apperr.Internal(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"accessToken": accessToken,
		"tokenType":   "bearer",
	})
}
