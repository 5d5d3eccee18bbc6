package pointledger

import (
	"context"
	"fmt"
	"time"

	"github.com/perknet/pointledger/entry"
	"github.com/perknet/pointledger/hash"
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/transaction"
)

// ──────────────────────────────────────────────────
// Queries and Verification
// ──────────────────────────────────────────────────

// Role classifies a caller for query authorization.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// Caller identifies who is asking. Non-admin callers only see entries on
// their own account; anything else reads as not found, so the existence of
// foreign entries is not leaked.
type Caller struct {
	AccountID id.AccountID
	Role      Role
}

func (c Caller) canSee(accountID id.AccountID) bool {
	return c.Role == RoleAdmin || c.AccountID == accountID
}

// EntryPage is one page of a filtered entry listing.
type EntryPage struct {
	Entries []*entry.Entry `json:"entries"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// VerifyResult reports an entry integrity check.
type VerifyResult struct {
	EntryID      id.EntryID   `json:"entry_id"`
	Valid        bool         `json:"valid"`
	StoredHash   string       `json:"stored_hash"`
	ComputedHash string       `json:"computed_hash"`
	Entry        *entry.Entry `json:"entry"`
	Message      string       `json:"message"`
}

// Stats aggregates lifetime economy figures. Rates are 0 when the
// denominator is zero.
type Stats struct {
	TotalPointsIssued      int64   `json:"total_points_issued"`
	TotalRedeemed          int64   `json:"total_redeemed"`
	TotalBurned            int64   `json:"total_burned"`
	TotalExpired           int64   `json:"total_expired"`
	RedemptionRate         float64 `json:"redemption_rate"`
	BurnRatio              float64 `json:"burn_ratio"`
	ActivePointsPercentage float64 `json:"active_points_percentage"`
}

// GetEntry retrieves one entry, subject to caller visibility.
func (l *Ledger) GetEntry(ctx context.Context, caller Caller, entryID id.EntryID) (*entry.Entry, error) {
	e, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !caller.canSee(e.AccountID) {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

// ListEntries returns a filtered, paginated page of entries, newest first.
// Non-admin callers are pinned to their own account.
func (l *Ledger) ListEntries(ctx context.Context, caller Caller, f entry.Filter) (*EntryPage, error) {
	if caller.Role != RoleAdmin {
		if !f.AccountID.IsNil() && f.AccountID != caller.AccountID {
			return nil, ErrNotFound
		}
		f.AccountID = caller.AccountID
	}
	if err := f.Normalize(); err != nil {
		return nil, err
	}

	entries, total, err := l.store.ListEntries(ctx, f)
	if err != nil {
		return nil, err
	}
	return &EntryPage{
		Entries: entries,
		Total:   total,
		Limit:   f.Limit,
		Offset:  f.Offset,
	}, nil
}

// EntriesByTransaction returns every entry of one transaction. Visible to
// admins and to the transaction's customer and business.
func (l *Ledger) EntriesByTransaction(ctx context.Context, caller Caller, txnID id.TransactionID) (*transaction.Transaction, []*entry.Entry, error) {
	txn, err := l.store.GetTransaction(ctx, txnID)
	if err != nil {
		return nil, nil, err
	}
	if !caller.canSee(txn.CustomerID) && !caller.canSee(txn.BusinessID) {
		return nil, nil, ErrTransactionNotFound
	}
	entries, err := l.store.ListByTransaction(ctx, txnID)
	if err != nil {
		return nil, nil, err
	}
	return txn, entries, nil
}

// EntriesByDateRange returns committed entries between start (inclusive)
// and end (exclusive), oldest first. Admin only.
func (l *Ledger) EntriesByDateRange(ctx context.Context, caller Caller, start, end time.Time) ([]*entry.Entry, error) {
	if caller.Role != RoleAdmin {
		return nil, ErrForbidden
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidRange)
	}
	return l.store.ListByDateRange(ctx, start, end)
}

// VerifyEntry recomputes the entry's hash over its stored fields and
// compares it bit-for-bit against the stored hash. This is the sole
// integrity check: the store write-protects nothing.
func (l *Ledger) VerifyEntry(ctx context.Context, caller Caller, entryID id.EntryID) (*VerifyResult, error) {
	e, err := l.GetEntry(ctx, caller, entryID)
	if err != nil {
		return nil, err
	}

	computed := hash.ComputeEntryHash(e)
	result := &VerifyResult{
		EntryID:      e.ID,
		Valid:        computed == e.Hash,
		StoredHash:   e.Hash,
		ComputedHash: computed,
		Entry:        e,
	}
	if result.Valid {
		result.Message = "Hash verification passed"
	} else {
		result.Message = "Hash verification FAILED"
		l.logger.Warn("entry hash verification failed",
			"entry_id", e.ID,
			"stored_hash", e.Hash,
			"computed_hash", computed,
		)
		l.plugins.EmitVerificationFailed(ctx, e.ID.String(), e.Hash, computed)
	}
	return result, nil
}

// EconomyStats aggregates lifetime point flows from the ledger.
func (l *Ledger) EconomyStats(ctx context.Context) (*Stats, error) {
	totals, err := l.store.EconomyTotals(ctx)
	if err != nil {
		return nil, err
	}

	s := &Stats{
		TotalPointsIssued: totals.TotalIssued,
		TotalRedeemed:     totals.TotalRedeemed,
		TotalBurned:       totals.TotalBurned,
		TotalExpired:      totals.TotalExpired,
	}
	if totals.TotalIssued > 0 {
		issued := float64(totals.TotalIssued)
		s.RedemptionRate = float64(totals.TotalRedeemed) / issued
		s.BurnRatio = float64(totals.TotalBurned) / issued
		active := totals.TotalIssued - totals.TotalRedeemed - totals.TotalExpired + totals.TotalAdjusted
		s.ActivePointsPercentage = float64(active) / issued * 100
	}
	return s, nil
}
