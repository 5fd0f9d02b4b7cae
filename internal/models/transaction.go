package models

import "time"

// Transaction is a single financial record owned by one user. Date and
// OwnerID are fixed at creation and never change afterwards. CategoryID is
// nil when the transaction has no category or its category was deleted.
type Transaction struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Amount       float64   `json:"amount"`
	CategoryID   *string   `json:"categoryId,omitempty"`
	CategoryName *string   `json:"categoryName,omitempty"`
	Description  string    `json:"description,omitempty"`
	OwnerID      string    `json:"ownerId"`
}

// Summary holds the aggregated totals for one user's ledger.
type Summary struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	NetSavings   float64 `json:"netSavings"`
}
