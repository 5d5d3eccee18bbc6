// Package store defines the storage contract for the points ledger.
//
// InsertPosting is the heart of the contract: it persists a balanced group
// of entries, applies the implied balance changes and computes each entry's
// tamper-evidence hash as one atomic unit. Implementations must guarantee
// that two concurrent postings against the same account cannot both pass
// the balance guard and then both apply, and that a failed posting leaves
// no partial state behind.
package store

import (
	"context"
	"time"

	"github.com/perknet/pointledger/account"
	"github.com/perknet/pointledger/audit"
	"github.com/perknet/pointledger/entry"
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/transaction"
)

// Posting is one balanced group of entries to commit atomically together
// with its transaction record. Entries arrive without BalanceAfter, Hash or
// Seq; the store fills those in during the commit, because the resulting
// balance is only known inside the atomic step.
type Posting struct {
	Transaction *transaction.Transaction
	Entries     []*entry.Entry
}

// EconomyTotals aggregates lifetime point flows across the whole ledger.
type EconomyTotals struct {
	TotalIssued   int64 `json:"total_issued"`
	TotalRedeemed int64 `json:"total_redeemed"`
	TotalBurned   int64 `json:"total_burned"`
	TotalExpired  int64 `json:"total_expired"`
	TotalAdjusted int64 `json:"total_adjusted"`
}

// Store is the unified storage interface for all pointledger entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Account methods
	CreateAccount(ctx context.Context, a *account.Account) error
	GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error)

	// Posting methods. InsertPosting applies every entry in order to its
	// account balance, rejects guarded accounts going negative and computes
	// BalanceAfter, Seq and Hash per entry inside the same atomic unit.
	InsertPosting(ctx context.Context, p *Posting) error
	GetEntry(ctx context.Context, entryID id.EntryID) (*entry.Entry, error)
	ListEntries(ctx context.Context, f entry.Filter) ([]*entry.Entry, int, error)
	ListByTransaction(ctx context.Context, txnID id.TransactionID) ([]*entry.Entry, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*entry.Entry, error)
	GetTransaction(ctx context.Context, txnID id.TransactionID) (*transaction.Transaction, error)

	// Audit methods
	UpsertDailyAudit(ctx context.Context, d *audit.DailyAuditHash) error
	GetDailyAudit(ctx context.Context, date string) (*audit.DailyAuditHash, error)

	// Stats methods
	EconomyTotals(ctx context.Context) (*EconomyTotals, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
