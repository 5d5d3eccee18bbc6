// Package entry defines the immutable ledger entry model and list filters.
package entry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/perknet/pointledger/id"
)

// Filter validation errors.
var (
	// ErrInvalidType is returned for an unknown entry type token.
	ErrInvalidType = errors.New("entry: invalid entry type")
	// ErrInvalidRange is returned for an inverted or negative constraint.
	ErrInvalidRange = errors.New("entry: invalid range")
	// ErrLimitExceeded is returned when a page size exceeds MaxListLimit.
	ErrLimitExceeded = errors.New("entry: limit exceeds maximum")
)

// Type classifies a ledger entry.
type Type string

// Entry types.
const (
	TypeEarn       Type = "EARN"
	TypeRedeem     Type = "REDEEM"
	TypeBurn       Type = "BURN"
	TypeExpire     Type = "EXPIRE"
	TypeAdjustment Type = "ADJUSTMENT"
)

// AllTypes lists every valid entry type.
func AllTypes() []Type {
	return []Type{TypeEarn, TypeRedeem, TypeBurn, TypeExpire, TypeAdjustment}
}

// ParseType parses a single type token, case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TypeEarn, TypeRedeem, TypeBurn, TypeExpire, TypeAdjustment:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// ParseTypes parses a comma-separated set of type tokens.
func ParseTypes(csv string) ([]Type, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}

	var out []Type
	for _, tok := range strings.Split(csv, ",") {
		t, err := ParseType(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Entry is one immutable debit-or-credit record against one account.
// Exactly one of Debit/Credit is nonzero. Entries are append-only: the
// store never updates or deletes them, and any out-of-band mutation is
// detectable through hash re-verification.
type Entry struct {
	ID            id.EntryID       `json:"id"`
	TransactionID id.TransactionID `json:"transaction_id"`
	AccountID     id.AccountID     `json:"account_id"`
	Type          Type             `json:"type"`
	Debit         int64            `json:"debit"`
	Credit        int64            `json:"credit"`
	Reason        string           `json:"reason,omitempty"`
	BalanceAfter  int64            `json:"balance_after"`
	Hash          string           `json:"hash"`
	CreatedAt     time.Time        `json:"created_at"`

	// Seq is the store-assigned insertion sequence. It breaks CreatedAt
	// ties for deterministic pagination and is excluded from the hash.
	Seq int64 `json:"seq"`
}

// Amount returns the entry's nonzero side (credit if positive, else debit).
func (e *Entry) Amount() int64 {
	if e.Credit > 0 {
		return e.Credit
	}
	return e.Debit
}

// MaxListLimit is the hard ceiling on list page sizes.
const MaxListLimit = 500

// DefaultListLimit applies when a filter leaves Limit unset.
const DefaultListLimit = 50

// Filter selects entries for list queries. Zero values mean "no constraint".
type Filter struct {
	AccountID id.AccountID
	Types     []Type
	MinAmount *int64
	MaxAmount *int64
	Start     time.Time
	End       time.Time
	Search    string
	Limit     int
	Offset    int
}

// Normalize validates the filter in place and applies defaults.
// Returned errors describe the offending constraint and are surfaced to
// callers as validation failures.
func (f *Filter) Normalize() error {
	if f.Limit == 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit < 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidRange, f.Limit)
	}
	if f.Limit > MaxListLimit {
		return fmt.Errorf("%w: limit %d exceeds the %d ceiling", ErrLimitExceeded, f.Limit, MaxListLimit)
	}
	if f.Offset < 0 {
		return fmt.Errorf("%w: offset must be non-negative, got %d", ErrInvalidRange, f.Offset)
	}
	if f.MinAmount != nil && *f.MinAmount < 0 {
		return fmt.Errorf("%w: minAmount must be non-negative, got %d", ErrInvalidRange, *f.MinAmount)
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MaxAmount < *f.MinAmount {
		return fmt.Errorf("%w: maxAmount %d is below minAmount %d", ErrInvalidRange, *f.MaxAmount, *f.MinAmount)
	}
	for _, t := range f.Types {
		if _, err := ParseType(string(t)); err != nil {
			return err
		}
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidRange, f.End.Format(time.RFC3339), f.Start.Format(time.RFC3339))
	}
	return nil
}

// Matches reports whether the entry satisfies every non-pagination
// constraint of the filter. Search matching is handled by the store, which
// knows the associated business name.
func (f *Filter) Matches(e *Entry) bool {
	if !f.AccountID.IsNil() && e.AccountID != f.AccountID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	amount := e.Amount()
	if f.MinAmount != nil && amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && amount > *f.MaxAmount {
		return false
	}
	// Date range is inclusive on both ends.
	if !f.Start.IsZero() && e.CreatedAt.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.CreatedAt.After(f.End) {
		return false
	}
	return true
}
