package pointledger

import (
	"errors"
	"fmt"

	"github.com/perknet/pointledger/economy"
	"github.com/perknet/pointledger/entry"
	"github.com/perknet/pointledger/id"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("pointledger: not found")
	ErrAlreadyExists = errors.New("pointledger: already exists")
	ErrInvalidInput  = errors.New("pointledger: invalid input")
	ErrUnauthorized  = errors.New("pointledger: unauthorized")
	ErrForbidden     = errors.New("pointledger: forbidden")

	// Lookup errors
	ErrEntryNotFound       = errors.New("pointledger: entry not found")
	ErrAccountNotFound     = errors.New("pointledger: account not found")
	ErrTransactionNotFound = errors.New("pointledger: transaction not found")
	ErrAuditNotFound       = errors.New("pointledger: daily audit not found")

	// Posting errors. The redeem validation sentinels are the economy
	// package's own, re-exported so callers can match either way.
	ErrInsufficientBalance         = errors.New("pointledger: insufficient balance")
	ErrBusinessInsufficientBalance = errors.New("pointledger: business has insufficient balance")
	ErrRedemptionLimitExceeded     = economy.ErrTicketCeilingExceeded
	ErrBelowMinimumRedeem          = economy.ErrBelowMinimumRedeem

	// Query errors, re-exported from the entry package.
	ErrInvalidType   = entry.ErrInvalidType
	ErrInvalidRange  = entry.ErrInvalidRange
	ErrLimitExceeded = entry.ErrLimitExceeded

	// Store errors
	ErrStoreNotReady   = errors.New("pointledger: store not ready")
	ErrStoreClosed     = errors.New("pointledger: store is closed")
	ErrCommitFailed    = errors.New("pointledger: commit failed")
	ErrMigrationFailed = errors.New("pointledger: migration failed")
)

// InsufficientBalanceError reports which account could not cover a debit.
// It matches ErrInsufficientBalance under errors.Is; callers needing the
// account use errors.As.
type InsufficientBalanceError struct {
	AccountID id.AccountID
	Balance   int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("pointledger: insufficient balance on %s: have %d, need %d",
		e.AccountID, e.Balance, e.Requested)
}

// Is makes the typed error match the generic sentinel.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("pointledger: validation failed for %s: %s", e.Field, e.Message)
}

// Is makes every validation error match the generic invalid-input sentinel.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrAuditNotFound)
}

// IsValidation returns true if the error is a caller input problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrLimitExceeded) ||
		errors.Is(err, ErrBelowMinimumRedeem) ||
		errors.Is(err, ErrRedemptionLimitExceeded)
}

// IsInsufficientFunds returns true if the error means a balance guard
// rejected the posting.
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrBusinessInsufficientBalance)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrCommitFailed)
}
