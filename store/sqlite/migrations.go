package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const migrationTable = "schema_migrations"

// migration is one named, versioned schema step. Steps are applied in order
// at most once, tracked in schema_migrations.
type migration struct {
	name string
	up   string
}

var migrations = []migration{
	{
		name: "0001_create_ledger_accounts",
		up: `
CREATE TABLE IF NOT EXISTS ledger_accounts (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL DEFAULT 'customer',
    name       TEXT NOT NULL DEFAULT '',
    balance    INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ledger_accounts_kind ON ledger_accounts (kind);
`,
	},
	{
		name: "0002_create_ledger_transactions",
		up: `
CREATE TABLE IF NOT EXISTS ledger_transactions (
    id            TEXT PRIMARY KEY,
    type          TEXT NOT NULL DEFAULT '',
    customer_id   TEXT NOT NULL DEFAULT '',
    business_id   TEXT NOT NULL DEFAULT '',
    points_amount INTEGER NOT NULL DEFAULT 0,
    burn_amount   INTEGER NOT NULL DEFAULT 0,
    created_at    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ledger_txns_customer ON ledger_transactions (customer_id);
CREATE INDEX IF NOT EXISTS idx_ledger_txns_business ON ledger_transactions (business_id);
`,
	},
	{
		name: "0003_create_ledger_entries",
		up: `
CREATE TABLE IF NOT EXISTS ledger_entries (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    id             TEXT NOT NULL UNIQUE,
    transaction_id TEXT NOT NULL,
    account_id     TEXT NOT NULL,
    type           TEXT NOT NULL DEFAULT '',
    debit          INTEGER NOT NULL DEFAULT 0,
    credit         INTEGER NOT NULL DEFAULT 0,
    reason         TEXT NOT NULL DEFAULT '',
    balance_after  INTEGER NOT NULL DEFAULT 0,
    hash           TEXT NOT NULL DEFAULT '',
    created_at     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries (account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_txn ON ledger_entries (transaction_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_created ON ledger_entries (created_at);
`,
	},
	{
		name: "0004_create_ledger_daily_audit",
		up: `
CREATE TABLE IF NOT EXISTS ledger_daily_audit (
    date        TEXT PRIMARY KEY,
    id          TEXT NOT NULL DEFAULT '',
    root_hash   TEXT NOT NULL DEFAULT '',
    entry_count INTEGER NOT NULL DEFAULT 0,
    type_counts TEXT NOT NULL DEFAULT '{}',
    computed_at INTEGER NOT NULL DEFAULT 0
);
`,
	},
}

// applyMigrations runs every unapplied migration inside its own transaction.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name       TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, migrationTable)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("pointledger/sqlite: ensure migration table: %w", err)
	}

	for _, m := range migrations {
		applied, err := isApplied(ctx, db, m.name)
		if err != nil {
			return fmt.Errorf("pointledger/sqlite: check migration %s: %w", m.name, err)
		}
		if applied {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("pointledger/sqlite: begin migration %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx, m.up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("pointledger/sqlite: exec migration %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (name, applied_at) VALUES (?, ?)", migrationTable),
			m.name, time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("pointledger/sqlite: record migration %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("pointledger/sqlite: commit migration %s: %w", m.name, err)
		}
	}
	return nil
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM "+migrationTable+" WHERE name = ?", name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
