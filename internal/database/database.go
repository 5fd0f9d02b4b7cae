package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool. The pragma rides on the DSN so
// foreign keys are enforced on every pooled connection.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		-- NULL user_id marks a global category visible to everyone
		user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
		UNIQUE(name, user_id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT NOT NULL PRIMARY KEY,
		date DATETIME NOT NULL,
		amount REAL NOT NULL,
		category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		description TEXT,
		owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
	);

	-- Reserved for the budgeting feature; not exposed through the API yet.
	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		amount REAL NOT NULL,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS refresh_tokens (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT UNIQUE NOT NULL,
		issued_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_owner_date ON transactions(owner_id, date DESC);

	-- UNIQUE(name, user_id) treats NULLs as distinct, so global categories
	-- need their own uniqueness guarantee.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_global_name ON categories(name) WHERE user_id IS NULL;
	`
	_, err := db.Exec(sqlStmt)
	return err
}
