package services

import (
	"database/sql"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lmoraleda/fintrack-be/internal/apperr"
	"github.com/lmoraleda/fintrack-be/internal/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// Fixed-width UTC layout: the stored text orders the same way the
	// timestamps do, which ORDER BY date relies on.
	dateLayout = "2006-01-02 15:04:05.000000000-07:00"
)

// ListFilter narrows and pages a transaction listing. All set filters are
// combined with AND.
type ListFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID *string
	Limit      int
	Offset     int
}

// TransactionServiceProvider defines the interface for ledger services.
type TransactionServiceProvider interface {
	Create(ownerID string, amount float64, categoryID *string, description string) (models.Transaction, error)
	Get(ownerID, txnID string) (models.Transaction, error)
	Update(ownerID, txnID string, amount float64, categoryID *string, description string) (models.Transaction, error)
	Delete(ownerID, txnID string) error
	List(ownerID string, filter ListFilter) ([]models.Transaction, error)
	Summarize(ownerID string) (models.Summary, error)
	ExportCSV(ownerID string, w io.Writer) error
}

// TransactionService provides business logic for the ownership-scoped ledger.
type TransactionService struct {
	db *sql.DB
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{db: db}
}

// Create inserts a new transaction for the owner. The date is assigned
// server-side and never client-supplied. Category validation and the insert
// run in one database transaction so a concurrent category delete cannot
// leave a dangling reference.
func (s *TransactionService) Create(ownerID string, amount float64, categoryID *string, description string) (models.Transaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Transaction{}, apperr.Internal(err)
	}
	defer tx.Rollback()

	categoryName, err := s.resolveCategory(tx, ownerID, categoryID)
	if err != nil {
		return models.Transaction{}, err
	}

	txn := models.Transaction{
		ID:           uuid.New().String(),
		Date:         time.Now().UTC(),
		Amount:       amount,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Description:  description,
		OwnerID:      ownerID,
	}

	_, err = tx.Exec(
		"INSERT INTO transactions(id, date, amount, category_id, description, owner_id) VALUES(?, ?, ?, ?, ?, ?)",
		txn.ID, txn.Date.Format(dateLayout), txn.Amount, txn.CategoryID, txn.Description, txn.OwnerID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Transaction{}, apperr.InvalidCategory("category does not exist")
		}
		return models.Transaction{}, apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return models.Transaction{}, apperr.Internal(err)
	}
	return txn, nil
}

// Get retrieves a single transaction scoped to its owner. A transaction
// belonging to someone else is indistinguishable from a missing one.
func (s *TransactionService) Get(ownerID, txnID string) (models.Transaction, error) {
	row := s.db.QueryRow(selectTxn+" WHERE t.id = ? AND t.owner_id = ?", txnID, ownerID)
	txn, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Transaction{}, apperr.NotFound("transaction not found")
		}
		return models.Transaction{}, apperr.Internal(err)
	}
	return txn, nil
}

// Update mutates amount, category and description of an owned transaction.
// Date and owner are immutable. The category is revalidated exactly like in
// Create, inside the same database transaction as the write.
func (s *TransactionService) Update(ownerID, txnID string, amount float64, categoryID *string, description string) (models.Transaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Transaction{}, apperr.Internal(err)
	}
	defer tx.Rollback()

	categoryName, err := s.resolveCategory(tx, ownerID, categoryID)
	if err != nil {
		return models.Transaction{}, err
	}

	var txn models.Transaction
	row := tx.QueryRow("SELECT id, date, owner_id FROM transactions WHERE id = ? AND owner_id = ?", txnID, ownerID)
	if err := row.Scan(&txn.ID, &txn.Date, &txn.OwnerID); err != nil {
		if err == sql.ErrNoRows {
			return models.Transaction{}, apperr.NotFound("transaction not found")
		}
		return models.Transaction{}, apperr.Internal(err)
	}

	_, err = tx.Exec(
		"UPDATE transactions SET amount = ?, category_id = ?, description = ? WHERE id = ? AND owner_id = ?",
		amount, categoryID, description, txnID, ownerID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Transaction{}, apperr.InvalidCategory("category does not exist")
		}
		return models.Transaction{}, apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return models.Transaction{}, apperr.Internal(err)
	}

	txn.Amount = amount
	txn.CategoryID = categoryID
	txn.CategoryName = categoryName
	txn.Description = description
	return txn, nil
}

// Delete removes an owned transaction permanently.
func (s *TransactionService) Delete(ownerID, txnID string) error {
	res, err := s.db.Exec("DELETE FROM transactions WHERE id = ? AND owner_id = ?", txnID, ownerID)
	if err != nil {
		return apperr.Internal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err)
	}
	if affected == 0 {
		return apperr.NotFound("transaction not found")
	}
	return nil
}

// List retrieves the owner's transactions newest-first, ties broken by
// insertion order. Filters are conjunctive; limit is clamped to 1..100.
func (s *TransactionService) List(ownerID string, filter ListFilter) ([]models.Transaction, error) {
	query, args := buildListQuery(ownerID, filter, true)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// Summarize computes income/expense/net totals over the owner's ledger.
// Income and expense are resolved by exact category name; users with no
// matching rows get zeros, never an error.
func (s *TransactionService) Summarize(ownerID string) (models.Summary, error) {
	const query = `
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.owner_id = ? AND c.name = ?`

	var summary models.Summary
	if err := s.db.QueryRow(query, ownerID, "Income").Scan(&summary.TotalIncome); err != nil {
		return models.Summary{}, apperr.Internal(err)
	}
	if err := s.db.QueryRow(query, ownerID, "Expense").Scan(&summary.TotalExpense); err != nil {
		return models.Summary{}, apperr.Internal(err)
	}
	summary.NetSavings = summary.TotalIncome - summary.TotalExpense
	return summary, nil
}

// ExportCSV writes the owner's full ledger as CSV, header first, rows in
// the same order as an unfiltered List. An empty ledger is a not-found.
func (s *TransactionService) ExportCSV(ownerID string, w io.Writer) error {
	query, args := buildListQuery(ownerID, ListFilter{}, false)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return apperr.Internal(err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	wroteHeader := false

	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return apperr.Internal(err)
		}
		if !wroteHeader {
			if err := cw.Write([]string{"ID", "Date", "Amount", "Category", "Description"}); err != nil {
				return apperr.Internal(err)
			}
			wroteHeader = true
		}

		categoryName := ""
		if txn.CategoryName != nil {
			categoryName = *txn.CategoryName
		}
		record := []string{
			txn.ID,
			txn.Date.UTC().Format(time.RFC3339),
			strconv.FormatFloat(txn.Amount, 'f', 2, 64),
			categoryName,
			txn.Description,
		}
		if err := cw.Write(record); err != nil {
			return apperr.Internal(err)
		}
	}
	if err := rows.Err(); err != nil {
		return apperr.Internal(err)
	}
	if !wroteHeader {
		return apperr.NotFound("no transactions to export")
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

const selectTxn = `
	SELECT t.id, t.date, t.amount, t.category_id, c.name, t.description, t.owner_id
	FROM transactions t
	LEFT JOIN categories c ON t.category_id = c.id`

// buildListQuery assembles the scoped, filtered, ordered listing query.
// The rowid tie-break keeps pagination deterministic for equal dates.
func buildListQuery(ownerID string, filter ListFilter, paginate bool) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(selectTxn)
	sb.WriteString(" WHERE t.owner_id = ?")
	args := []interface{}{ownerID}

	if filter.From != nil {
		sb.WriteString(" AND t.date >= ?")
		args = append(args, filter.From.UTC().Format(dateLayout))
	}
	if filter.To != nil {
		sb.WriteString(" AND t.date <= ?")
		args = append(args, filter.To.UTC().Format(dateLayout))
	}
	if filter.CategoryID != nil {
		sb.WriteString(" AND t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}

	sb.WriteString(" ORDER BY t.date DESC, t.rowid DESC")

	if paginate {
		limit := filter.Limit
		if limit <= 0 {
			limit = defaultPageLimit
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, limit, offset)
	}

	return sb.String(), args
}

// scanTransaction is a helper to scan a transaction from a row or rows object.
func scanTransaction(scanner interface{ Scan(...interface{}) error }) (models.Transaction, error) {
	var txn models.Transaction
	var categoryID, categoryName, description sql.NullString

	err := scanner.Scan(&txn.ID, &txn.Date, &txn.Amount, &categoryID, &categoryName, &description, &txn.OwnerID)
	if err != nil {
		return txn, err
	}

	if categoryID.Valid {
		txn.CategoryID = &categoryID.String
	}
	if categoryName.Valid {
		txn.CategoryName = &categoryName.String
	}
	txn.Description = description.String
	return txn, nil
}

// resolveCategory checks that categoryID is nil or names a category the
// owner may use (their own or a global one), returning its name. Run inside
// the caller's transaction so the check and the write are atomic.
func (s *TransactionService) resolveCategory(tx *sql.Tx, ownerID string, categoryID *string) (*string, error) {
	if categoryID == nil {
		return nil, nil
	}
	var name string
	row := tx.QueryRow(
		"SELECT name FROM categories WHERE id = ? AND (user_id = ? OR user_id IS NULL)",
		*categoryID, ownerID,
	)
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.InvalidCategory("category does not exist")
		}
		return nil, apperr.Internal(err)
	}
	return &name, nil
}

// isForeignKeyViolation reports whether err comes from an FK constraint.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
