// Package account defines the account model for the points ledger.
//
// Balances are derived projections over ledger entries: the posting engine
// is the only writer, and every mutation happens in the same transaction as
// the entries that explain it.
package account

import (
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/types"
)

// Kind classifies an account.
type Kind string

const (
	// KindCustomer accounts earn and redeem points. Balance is never negative.
	KindCustomer Kind = "customer"
	// KindBusiness accounts hold the float that earned points are drawn from.
	KindBusiness Kind = "business"
	// KindSystem accounts are reserved sentinels (burn, reserve).
	KindSystem Kind = "system"
)

// Account is a customer, business or system participant in the ledger.
type Account struct {
	types.Entity
	ID      id.AccountID `json:"id"`
	Kind    Kind         `json:"kind"`
	Name    string       `json:"name"`
	Balance int64        `json:"balance"`
}

// GuardsNegativeBalance reports whether postings against this account must
// reject rather than drive the balance below zero. System sentinels only
// ever accumulate credits, so they are unguarded.
func (a *Account) GuardsNegativeBalance() bool {
	return a.Kind == KindCustomer || a.Kind == KindBusiness
}
