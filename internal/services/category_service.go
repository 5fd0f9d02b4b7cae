package services

import (
	"database/sql"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
	"github.com/lmoraleda/fintrack-be/internal/models"
)

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	Create(ownerID, name string) (models.Category, error)
	List(ownerID string) ([]models.Category, error)
	Delete(ownerID, categoryID string) error
}

// CategoryService provides business logic for per-user category buckets.
type CategoryService struct {
	db *sql.DB
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

// NormalizeCategoryName canonicalizes casing so "income" and "Income"
// collide in uniqueness checks: first rune upper, rest lower.
func NormalizeCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}

// Create adds a new category for the owner. The name is normalized before
// the uniqueness check, so duplicates differing only in case conflict.
func (s *CategoryService) Create(ownerID, name string) (models.Category, error) {
	normalized := NormalizeCategoryName(name)
	if normalized == "" {
		return models.Category{}, apperr.Validation("category name is required")
	}

	category := models.Category{
		ID:     uuid.New().String(),
		Name:   normalized,
		UserID: &ownerID,
	}

	_, err := s.db.Exec(
		"INSERT INTO categories(id, name, user_id) VALUES(?, ?, ?)",
		category.ID, category.Name, category.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Category{}, apperr.Conflict("category already exists")
		}
		return models.Category{}, apperr.Internal(err)
	}
	return category, nil
}

// List retrieves the owner's categories plus the global (unowned) ones.
func (s *CategoryService) List(ownerID string) ([]models.Category, error) {
	rows, err := s.db.Query(
		"SELECT id, name, user_id FROM categories WHERE user_id = ? OR user_id IS NULL ORDER BY name",
		ownerID,
	)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.UserID); err != nil {
			return nil, apperr.Internal(err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Delete removes a category owned by ownerID. Transactions referencing it
// keep their history: the schema's ON DELETE SET NULL clears the reference.
// Global categories cannot be deleted through this path.
func (s *CategoryService) Delete(ownerID, categoryID string) error {
	res, err := s.db.Exec("DELETE FROM categories WHERE id = ? AND user_id = ?", categoryID, ownerID)
	if err != nil {
		return apperr.Internal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err)
	}
	if affected == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}
