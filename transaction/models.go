// Package transaction defines the grouping record for balanced ledger postings.
package transaction

import (
	"time"

	"github.com/perknet/pointledger/id"
)

// Type classifies the business event a transaction records.
type Type string

// Transaction types.
const (
	TypeEarn       Type = "EARN"
	TypeRedeem     Type = "REDEEM"
	TypeExpire     Type = "EXPIRE"
	TypeAdjustment Type = "ADJUSTMENT"
)

// Transaction groups the ledger entries created atomically for one business
// event. PointsAmount is signed: positive for earns, negative for redeems
// and expirations. BurnAmount is nonzero only for redeems.
type Transaction struct {
	ID           id.TransactionID `json:"id"`
	Type         Type             `json:"type"`
	CustomerID   id.AccountID     `json:"customer_id"`
	BusinessID   id.AccountID     `json:"business_id"`
	PointsAmount int64            `json:"points_amount"`
	BurnAmount   int64            `json:"burn_amount"`
	CreatedAt    time.Time        `json:"created_at"`
}
