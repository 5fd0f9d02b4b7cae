package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
	"github.com/lmoraleda/fintrack-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, password string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	GetByUsername(username string) (models.User, error)
	IssueRefreshToken(userID string) (models.RefreshToken, error)
	Refresh(token string) (models.User, error)
	ListUsers() ([]models.User, error)
	SetAdmin(userID string, isAdmin bool) (models.User, error)
	RequireAdmin(username string) error
}

// UserService provides business logic for accounts, credentials and roles.
type UserService struct {
	db         *sql.DB
	refreshTTL time.Duration
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, refreshTTL time.Duration) *UserService {
	return &UserService{db: db, refreshTTL: refreshTTL}
}

// Register creates a new user, hashing their password. Registering an
// already taken username fails with a conflict.
func (s *UserService) Register(username, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return models.User{}, apperr.Validation("username and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.Internal(err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, username, password_hash, is_admin, created_at) VALUES(?, ?, ?, 0, ?)",
		user.ID, user.Username, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperr.Conflict("username already exists")
		}
		return models.User{}, apperr.Internal(err)
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown username and wrong
// password fail with the same error so login never reveals whether the
// username exists.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, password_hash, is_admin, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.Unauthenticated("invalid username or password")
		}
		return models.User{}, apperr.Internal(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, apperr.Unauthenticated("invalid username or password")
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetByUsername retrieves a single user by their username.
func (s *UserService) GetByUsername(username string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, is_admin, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.Unauthenticated("unknown user")
		}
		return models.User{}, apperr.Internal(err)
	}
	return user, nil
}

// IssueRefreshToken persists and returns a new opaque refresh token for a user.
func (s *UserService) IssueRefreshToken(userID string) (models.RefreshToken, error) {
	now := time.Now().UTC()
	rt := models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}

	_, err := s.db.Exec(
		"INSERT INTO refresh_tokens(id, user_id, token, issued_at, expires_at) VALUES(?, ?, ?, ?, ?)",
		rt.ID, rt.UserID, rt.Token, rt.IssuedAt, rt.ExpiresAt,
	)
	if err != nil {
		return models.RefreshToken{}, apperr.Internal(err)
	}
	return rt, nil
}

// Refresh resolves a refresh token to its user. Unknown or expired tokens
// fail as unauthenticated; expired rows are cleaned up on the way out.
func (s *UserService) Refresh(token string) (models.User, error) {
	var userID string
	var expiresAt time.Time
	row := s.db.QueryRow("SELECT user_id, expires_at FROM refresh_tokens WHERE token = ?", token)
	if err := row.Scan(&userID, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.Unauthenticated("invalid refresh token")
		}
		return models.User{}, apperr.Internal(err)
	}

	if time.Now().After(expiresAt) {
		_, _ = s.db.Exec("DELETE FROM refresh_tokens WHERE token = ?", token)
		return models.User{}, apperr.Unauthenticated("refresh token expired")
	}

	var user models.User
	row = s.db.QueryRow("SELECT id, username, is_admin, created_at FROM users WHERE id = ?", userID)
	if err := row.Scan(&user.ID, &user.Username, &user.IsAdmin, &user.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.Unauthenticated("invalid refresh token")
		}
		return models.User{}, apperr.Internal(err)
	}
	return user, nil
}

// ListUsers retrieves all users, for the admin surface.
func (s *UserService) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT id, username, is_admin, created_at FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.IsAdmin, &user.CreatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetAdmin promotes or demotes a user by id.
func (s *UserService) SetAdmin(userID string, isAdmin bool) (models.User, error) {
	res, err := s.db.Exec("UPDATE users SET is_admin = ? WHERE id = ?", isAdmin, userID)
	if err != nil {
		return models.User{}, apperr.Internal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, apperr.Internal(err)
	}
	if affected == 0 {
		return models.User{}, apperr.NotFound("user not found")
	}

	var user models.User
	row := s.db.QueryRow("SELECT id, username, is_admin, created_at FROM users WHERE id = ?", userID)
	if err := row.Scan(&user.ID, &user.Username, &user.IsAdmin, &user.CreatedAt); err != nil {
		return models.User{}, apperr.Internal(err)
	}
	return user, nil
}

// RequireAdmin checks the user's admin flag against current state, so a
// revoked admin loses access on their next request.
func (s *UserService) RequireAdmin(username string) error {
	var isAdmin bool
	row := s.db.QueryRow("SELECT is_admin FROM users WHERE username = ?", username)
	if err := row.Scan(&isAdmin); err != nil {
		if err == sql.ErrNoRows {
			return apperr.Forbidden("admins only")
		}
		return apperr.Internal(err)
	}
	if !isAdmin {
		return apperr.Forbidden("admins only")
	}
	return nil
}

// isUniqueViolation reports whether err comes from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
