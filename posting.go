package pointledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/perknet/pointledger/account"
	"github.com/perknet/pointledger/entry"
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/store"
	"github.com/perknet/pointledger/transaction"
)

// ──────────────────────────────────────────────────
// Double-Entry Posting
// ──────────────────────────────────────────────────

// EarnResult reports a committed earn transaction.
type EarnResult struct {
	Transaction  *transaction.Transaction `json:"transaction"`
	Entries      []*entry.Entry           `json:"entries"`
	PointsEarned int64                    `json:"points_earned"`
	EmissionRate decimal.Decimal          `json:"emission_rate"`
}

// RedeemResult reports a committed redemption.
type RedeemResult struct {
	Transaction    *transaction.Transaction `json:"transaction"`
	Entries        []*entry.Entry           `json:"entries"`
	PointsRedeemed int64                    `json:"points_redeemed"`
	BurnAmount     int64                    `json:"burn_amount"`
	BusinessCredit int64                    `json:"business_credit"`
}

// AdjustResult reports a committed manual adjustment.
type AdjustResult struct {
	Transaction *transaction.Transaction `json:"transaction"`
	Entries     []*entry.Entry           `json:"entries"`
	Delta       int64                    `json:"delta"`
}

// ExpireResult reports a committed expiration.
type ExpireResult struct {
	Transaction   *transaction.Transaction `json:"transaction"`
	Entries       []*entry.Entry           `json:"entries"`
	PointsExpired int64                    `json:"points_expired"`
}

// Earn credits a customer with points for a purchase, funded by the
// business float. The emission rate comes from the configured RateProvider;
// points are floor(purchaseAmount * rate). Both sides commit atomically.
func (l *Ledger) Earn(ctx context.Context, customerID, businessID id.AccountID, purchaseAmount decimal.Decimal, tier string) (*EarnResult, error) {
	if !purchaseAmount.IsPositive() {
		return nil, ValidationError{Field: "purchaseAmount", Message: "must be positive"}
	}
	customer, business, err := l.loadParticipants(ctx, customerID, businessID)
	if err != nil {
		return nil, err
	}

	rate, err := l.rates.EmissionRate(ctx, businessID, tier)
	if err != nil {
		return nil, fmt.Errorf("resolve emission rate: %w", err)
	}
	points := l.calc.PointsEarned(purchaseAmount, rate)
	if points <= 0 {
		return nil, ValidationError{Field: "purchaseAmount", Message: "purchase too small to earn points"}
	}

	now := time.Now().UTC()
	txn := &transaction.Transaction{
		ID:           id.NewTransactionID(),
		Type:         transaction.TypeEarn,
		CustomerID:   customer.ID,
		BusinessID:   business.ID,
		PointsAmount: points,
		CreatedAt:    now,
	}
	reason := fmt.Sprintf("earned on purchase of %s at rate %s", purchaseAmount, rate)
	posting := &store.Posting{
		Transaction: txn,
		Entries: []*entry.Entry{
			{
				ID:            id.NewEntryID(),
				TransactionID: txn.ID,
				AccountID:     business.ID,
				Type:          entry.TypeEarn,
				Debit:         points,
				Reason:        reason,
				CreatedAt:     now,
			},
			{
				ID:            id.NewEntryID(),
				TransactionID: txn.ID,
				AccountID:     customer.ID,
				Type:          entry.TypeEarn,
				Credit:        points,
				Reason:        reason,
				CreatedAt:     now,
			},
		},
	}

	if err := l.commit(ctx, posting, business.ID); err != nil {
		return nil, err
	}

	l.logger.Info("earn posted",
		"transaction_id", txn.ID,
		"customer_id", customer.ID,
		"business_id", business.ID,
		"points", points,
	)
	l.plugins.EmitEarnPosted(ctx, txn)

	return &EarnResult{
		Transaction:  txn,
		Entries:      posting.Entries,
		PointsEarned: points,
		EmissionRate: rate,
	}, nil
}

// Redeem spends customer points against a ticket. The burn slice is
// destroyed at the burn sentinel; the business receives the remainder.
func (l *Ledger) Redeem(ctx context.Context, customerID, businessID id.AccountID, points int64, ticketTotal decimal.Decimal, reason string) (*RedeemResult, error) {
	if points <= 0 {
		return nil, ValidationError{Field: "points", Message: "must be positive"}
	}
	if !ticketTotal.IsPositive() {
		return nil, ValidationError{Field: "ticketTotal", Message: "must be positive"}
	}
	if err := l.calc.CheckRedeem(points, ticketTotal); err != nil {
		return nil, err
	}
	customer, business, err := l.loadParticipants(ctx, customerID, businessID)
	if err != nil {
		return nil, err
	}

	burn := l.calc.BurnAmount(points)
	businessCredit := points - burn

	now := time.Now().UTC()
	txn := &transaction.Transaction{
		ID:           id.NewTransactionID(),
		Type:         transaction.TypeRedeem,
		CustomerID:   customer.ID,
		BusinessID:   business.ID,
		PointsAmount: -points,
		BurnAmount:   burn,
		CreatedAt:    now,
	}
	if reason == "" {
		reason = fmt.Sprintf("redeemed against ticket of %s", ticketTotal)
	}
	entries := []*entry.Entry{
		{
			ID:            id.NewEntryID(),
			TransactionID: txn.ID,
			AccountID:     customer.ID,
			Type:          entry.TypeRedeem,
			Debit:         points,
			Reason:        reason,
			CreatedAt:     now,
		},
		{
			ID:            id.NewEntryID(),
			TransactionID: txn.ID,
			AccountID:     business.ID,
			Type:          entry.TypeRedeem,
			Credit:        businessCredit,
			Reason:        reason,
			CreatedAt:     now,
		},
	}
	if burn > 0 {
		entries = append(entries, &entry.Entry{
			ID:            id.NewEntryID(),
			TransactionID: txn.ID,
			AccountID:     id.SystemBurnAccount,
			Type:          entry.TypeBurn,
			Credit:        burn,
			Reason:        "redemption burn",
			CreatedAt:     now,
		})
	}
	posting := &store.Posting{Transaction: txn, Entries: entries}

	if err := l.commit(ctx, posting, business.ID); err != nil {
		return nil, err
	}

	l.logger.Info("redeem posted",
		"transaction_id", txn.ID,
		"customer_id", customer.ID,
		"business_id", business.ID,
		"points", points,
		"burn", burn,
	)
	l.plugins.EmitRedeemPosted(ctx, txn)
	if burn > 0 {
		l.plugins.EmitPointsBurned(ctx, txn, burn)
	}

	return &RedeemResult{
		Transaction:    txn,
		Entries:        posting.Entries,
		PointsRedeemed: points,
		BurnAmount:     burn,
		BusinessCredit: businessCredit,
	}, nil
}

// Adjust posts a signed manual correction to an account, balanced against
// the reserve sentinel. A reason is mandatory: adjustments are the only way
// to amend history and must be explainable.
func (l *Ledger) Adjust(ctx context.Context, accountID id.AccountID, delta int64, reason string) (*AdjustResult, error) {
	if delta == 0 {
		return nil, ValidationError{Field: "delta", Message: "must be nonzero"}
	}
	if reason == "" {
		return nil, ValidationError{Field: "reason", Message: "required for adjustments"}
	}
	target, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if target.Kind == account.KindSystem {
		return nil, ValidationError{Field: "accountID", Message: "cannot adjust system accounts"}
	}

	now := time.Now().UTC()
	txn := &transaction.Transaction{
		ID:           id.NewTransactionID(),
		Type:         transaction.TypeAdjustment,
		CustomerID:   target.ID,
		BusinessID:   target.ID,
		PointsAmount: delta,
		CreatedAt:    now,
	}

	var targetEntry, reserveEntry *entry.Entry
	if delta > 0 {
		targetEntry = &entry.Entry{Credit: delta}
		reserveEntry = &entry.Entry{Debit: delta}
	} else {
		targetEntry = &entry.Entry{Debit: -delta}
		reserveEntry = &entry.Entry{Credit: -delta}
	}
	targetEntry.ID = id.NewEntryID()
	targetEntry.TransactionID = txn.ID
	targetEntry.AccountID = target.ID
	targetEntry.Type = entry.TypeAdjustment
	targetEntry.Reason = reason
	targetEntry.CreatedAt = now
	reserveEntry.ID = id.NewEntryID()
	reserveEntry.TransactionID = txn.ID
	reserveEntry.AccountID = id.SystemReserveAccount
	reserveEntry.Type = entry.TypeAdjustment
	reserveEntry.Reason = reason
	reserveEntry.CreatedAt = now

	// Target first so a debit guard failure is attributed to it.
	posting := &store.Posting{Transaction: txn, Entries: []*entry.Entry{targetEntry, reserveEntry}}
	if err := l.commit(ctx, posting, id.AccountID{}); err != nil {
		return nil, err
	}

	l.logger.Info("adjustment posted",
		"transaction_id", txn.ID,
		"account_id", target.ID,
		"delta", delta,
		"reason", reason,
	)
	l.plugins.EmitAdjustmentPosted(ctx, txn)

	return &AdjustResult{Transaction: txn, Entries: posting.Entries, Delta: delta}, nil
}

// Expire removes points from a customer, crediting them to the burn
// sentinel so the expired supply stays visible.
func (l *Ledger) Expire(ctx context.Context, customerID id.AccountID, points int64, reason string) (*ExpireResult, error) {
	if points <= 0 {
		return nil, ValidationError{Field: "points", Message: "must be positive"}
	}
	customer, err := l.store.GetAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.Kind != account.KindCustomer {
		return nil, ValidationError{Field: "customerID", Message: "expiration applies to customer accounts"}
	}
	if reason == "" {
		reason = "points expired"
	}

	now := time.Now().UTC()
	txn := &transaction.Transaction{
		ID:           id.NewTransactionID(),
		Type:         transaction.TypeExpire,
		CustomerID:   customer.ID,
		BusinessID:   id.SystemBurnAccount,
		PointsAmount: -points,
		CreatedAt:    now,
	}
	posting := &store.Posting{
		Transaction: txn,
		Entries: []*entry.Entry{
			{
				ID:            id.NewEntryID(),
				TransactionID: txn.ID,
				AccountID:     customer.ID,
				Type:          entry.TypeExpire,
				Debit:         points,
				Reason:        reason,
				CreatedAt:     now,
			},
			{
				ID:            id.NewEntryID(),
				TransactionID: txn.ID,
				AccountID:     id.SystemBurnAccount,
				Type:          entry.TypeExpire,
				Credit:        points,
				Reason:        reason,
				CreatedAt:     now,
			},
		},
	}

	if err := l.commit(ctx, posting, id.AccountID{}); err != nil {
		return nil, err
	}

	l.logger.Info("expiration posted",
		"transaction_id", txn.ID,
		"customer_id", customer.ID,
		"points", points,
	)
	l.plugins.EmitPointsExpired(ctx, txn, points)

	return &ExpireResult{Transaction: txn, Entries: posting.Entries, PointsExpired: points}, nil
}

// loadParticipants fetches and validates the customer and business sides of
// a posting.
func (l *Ledger) loadParticipants(ctx context.Context, customerID, businessID id.AccountID) (*account.Account, *account.Account, error) {
	customer, err := l.store.GetAccount(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	if customer.Kind != account.KindCustomer {
		return nil, nil, ValidationError{Field: "customerID", Message: "not a customer account"}
	}
	business, err := l.store.GetAccount(ctx, businessID)
	if err != nil {
		return nil, nil, err
	}
	if business.Kind != account.KindBusiness {
		return nil, nil, ValidationError{Field: "businessID", Message: "not a business account"}
	}
	return customer, business, nil
}

// commit pushes a posting through the store and refreshes the balance
// cache from the committed entries. An insufficient balance on businessID
// is reported as the business-specific sentinel.
func (l *Ledger) commit(ctx context.Context, p *store.Posting, businessID id.AccountID) error {
	if err := l.store.InsertPosting(ctx, p); err != nil {
		var ibe *InsufficientBalanceError
		if errors.As(err, &ibe) && !businessID.IsNil() && ibe.AccountID == businessID {
			return fmt.Errorf("%w: %w", ErrBusinessInsufficientBalance, ibe)
		}
		return err
	}
	for _, e := range p.Entries {
		l.balances.set(e.AccountID, e.BalanceAfter)
	}
	return nil
}
