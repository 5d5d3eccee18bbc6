// Package sqlite implements store.Store on SQLite via database/sql and the
// modernc.org/sqlite driver.
//
// Posting atomicity comes from a single write transaction: the balance
// guard, the balance update and the entry inserts commit or roll back as
// one unit. The balance update is additionally conditioned on the balance
// the guard saw, so a lost update surfaces as a commit failure instead of
// silently overwriting.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/perknet/pointledger"
	"github.com/perknet/pointledger/account"
	"github.com/perknet/pointledger/audit"
	"github.com/perknet/pointledger/entry"
	"github.com/perknet/pointledger/hash"
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/store"
	"github.com/perknet/pointledger/transaction"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Use ":memory:" for an
// in-process ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("pointledger/sqlite: open %s: %w", path, err)
	}
	// A single writer keeps the posting transaction serialization simple.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pointledger/sqlite: %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}
	return &Store{db: db}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if err := applyMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("%w: %v", pointledger.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Account Store ====================

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ledger_accounts (id, kind, name, balance, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID.String(), string(a.Kind), a.Name, a.Balance,
		a.CreatedAt.UnixNano(), a.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return pointledger.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	var r accountRow
	err := s.db.QueryRowContext(ctx, `
SELECT id, kind, name, balance, created_at, updated_at
FROM ledger_accounts WHERE id = ?`, accountID.String(),
	).Scan(&r.ID, &r.Kind, &r.Name, &r.Balance, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, pointledger.ErrAccountNotFound
		}
		return nil, err
	}
	return r.toDomain()
}

// ==================== Posting Store ====================

func (s *Store) InsertPosting(ctx context.Context, p *store.Posting) error {
	if p.Transaction == nil || len(p.Entries) == 0 {
		return pointledger.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", pointledger.ErrCommitFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	txn := p.Transaction
	if _, err := tx.ExecContext(ctx, `
INSERT INTO ledger_transactions (id, type, customer_id, business_id, points_amount, burn_amount, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID.String(), string(txn.Type), txn.CustomerID.String(), txn.BusinessID.String(),
		txn.PointsAmount, txn.BurnAmount, txn.CreatedAt.UnixNano(),
	); err != nil {
		if isUniqueViolation(err) {
			return pointledger.ErrAlreadyExists
		}
		return fmt.Errorf("%w: insert transaction: %v", pointledger.ErrCommitFailed, err)
	}

	for _, e := range p.Entries {
		var kind string
		var balance int64
		err := tx.QueryRowContext(ctx,
			"SELECT kind, balance FROM ledger_accounts WHERE id = ?", e.AccountID.String(),
		).Scan(&kind, &balance)
		if err != nil {
			if isNoRows(err) {
				return pointledger.ErrAccountNotFound
			}
			return fmt.Errorf("%w: read account: %v", pointledger.ErrCommitFailed, err)
		}

		next := balance + e.Credit - e.Debit
		acct := account.Account{Kind: account.Kind(kind)}
		if next < 0 && acct.GuardsNegativeBalance() {
			return &pointledger.InsufficientBalanceError{
				AccountID: e.AccountID,
				Balance:   balance,
				Requested: e.Debit,
			}
		}

		// Condition on the balance the guard saw.
		res, err := tx.ExecContext(ctx, `
UPDATE ledger_accounts SET balance = ?, updated_at = ?
WHERE id = ? AND balance = ?`,
			next, time.Now().UTC().UnixNano(), e.AccountID.String(), balance,
		)
		if err != nil {
			return fmt.Errorf("%w: update balance: %v", pointledger.ErrCommitFailed, err)
		}
		if n, err := res.RowsAffected(); err != nil || n != 1 {
			return pointledger.ErrCommitFailed
		}

		e.BalanceAfter = next
		e.Hash = hash.ComputeEntryHash(e)

		ins, err := tx.ExecContext(ctx, `
INSERT INTO ledger_entries (id, transaction_id, account_id, type, debit, credit, reason, balance_after, hash, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), e.TransactionID.String(), e.AccountID.String(), string(e.Type),
			e.Debit, e.Credit, e.Reason, e.BalanceAfter, e.Hash, e.CreatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("%w: insert entry: %v", pointledger.ErrCommitFailed, err)
		}
		seq, err := ins.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: entry seq: %v", pointledger.ErrCommitFailed, err)
		}
		e.Seq = seq
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", pointledger.ErrCommitFailed, err)
	}
	return nil
}

const entryColumns = `e.seq, e.id, e.transaction_id, e.account_id, e.type, e.debit, e.credit, e.reason, e.balance_after, e.hash, e.created_at`

func scanEntry(scanner interface{ Scan(...any) error }) (*entry.Entry, error) {
	var r entryRow
	if err := scanner.Scan(
		&r.Seq, &r.ID, &r.TransactionID, &r.AccountID, &r.Type,
		&r.Debit, &r.Credit, &r.Reason, &r.BalanceAfter, &r.Hash, &r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return r.toDomain()
}

func (s *Store) GetEntry(ctx context.Context, entryID id.EntryID) (*entry.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM ledger_entries e WHERE e.id = ?", entryID.String())
	e, err := scanEntry(row)
	if err != nil {
		if isNoRows(err) {
			return nil, pointledger.ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, f entry.Filter) ([]*entry.Entry, int, error) {
	var (
		where []string
		args  []any
		join  string
	)

	if !f.AccountID.IsNil() {
		where = append(where, "e.account_id = ?")
		args = append(args, f.AccountID.String())
	}
	if len(f.Types) > 0 {
		placeholders := make([]string, len(f.Types))
		for i, t := range f.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, "e.type IN ("+strings.Join(placeholders, ", ")+")")
	}
	if f.MinAmount != nil {
		where = append(where, "(CASE WHEN e.credit > 0 THEN e.credit ELSE e.debit END) >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		where = append(where, "(CASE WHEN e.credit > 0 THEN e.credit ELSE e.debit END) <= ?")
		args = append(args, *f.MaxAmount)
	}
	if !f.Start.IsZero() {
		where = append(where, "e.created_at >= ?")
		args = append(args, f.Start.UnixNano())
	}
	if !f.End.IsZero() {
		where = append(where, "e.created_at <= ?")
		args = append(args, f.End.UnixNano())
	}
	if f.Search != "" {
		join = `
LEFT JOIN ledger_transactions t ON t.id = e.transaction_id
LEFT JOIN ledger_accounts b ON b.id = t.business_id`
		where = append(where, "(instr(lower(e.transaction_id), lower(?)) > 0 OR instr(lower(b.name), lower(?)) > 0)")
		args = append(args, f.Search, f.Search)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM ledger_entries e" + join + clause
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQuery := "SELECT " + entryColumns + " FROM ledger_entries e" + join + clause +
		" ORDER BY e.created_at DESC, e.seq DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, pageQuery, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]*entry.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *Store) ListByTransaction(ctx context.Context, txnID id.TransactionID) ([]*entry.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM ledger_entries e WHERE e.transaction_id = ? ORDER BY e.seq ASC",
		txnID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*entry.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) ListByDateRange(ctx context.Context, start, end time.Time) ([]*entry.Entry, error) {
	// Inclusive start, exclusive end, oldest first.
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM ledger_entries e WHERE e.created_at >= ? AND e.created_at < ? ORDER BY e.created_at ASC, e.seq ASC",
		start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*entry.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) GetTransaction(ctx context.Context, txnID id.TransactionID) (*transaction.Transaction, error) {
	var r transactionRow
	err := s.db.QueryRowContext(ctx, `
SELECT id, type, customer_id, business_id, points_amount, burn_amount, created_at
FROM ledger_transactions WHERE id = ?`, txnID.String(),
	).Scan(&r.ID, &r.Type, &r.CustomerID, &r.BusinessID, &r.PointsAmount, &r.BurnAmount, &r.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, pointledger.ErrTransactionNotFound
		}
		return nil, err
	}
	return r.toDomain()
}

// ==================== Audit Store ====================

func (s *Store) UpsertDailyAudit(ctx context.Context, d *audit.DailyAuditHash) error {
	counts, err := encodeTypeCounts(d.TypeCounts)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO ledger_daily_audit (date, id, root_hash, entry_count, type_counts, computed_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (date) DO UPDATE SET
    id = excluded.id,
    root_hash = excluded.root_hash,
    entry_count = excluded.entry_count,
    type_counts = excluded.type_counts,
    computed_at = excluded.computed_at`,
		d.Date, d.ID.String(), d.RootHash, d.EntryCount, counts, d.ComputedAt.UnixNano(),
	)
	return err
}

func (s *Store) GetDailyAudit(ctx context.Context, date string) (*audit.DailyAuditHash, error) {
	var r auditRow
	err := s.db.QueryRowContext(ctx, `
SELECT date, id, root_hash, entry_count, type_counts, computed_at
FROM ledger_daily_audit WHERE date = ?`, date,
	).Scan(&r.Date, &r.ID, &r.RootHash, &r.EntryCount, &r.TypeCounts, &r.ComputedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, pointledger.ErrAuditNotFound
		}
		return nil, err
	}
	return r.toDomain()
}

// ==================== Stats Store ====================

func (s *Store) EconomyTotals(ctx context.Context) (*store.EconomyTotals, error) {
	totals := &store.EconomyTotals{}
	err := s.db.QueryRowContext(ctx, `
SELECT
    COALESCE(SUM(CASE WHEN type = 'EARN' THEN credit ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN type = 'REDEEM' THEN debit ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN type = 'BURN' THEN credit ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN type = 'EXPIRE' THEN debit ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN type = 'ADJUSTMENT' AND account_id NOT IN (?, ?) THEN credit - debit ELSE 0 END), 0)
FROM ledger_entries`,
		id.SystemBurnAccount.String(), id.SystemReserveAccount.String(),
	).Scan(&totals.TotalIssued, &totals.TotalRedeemed, &totals.TotalBurned, &totals.TotalExpired, &totals.TotalAdjusted)
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// ==================== helpers ====================

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
