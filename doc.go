// Package pointledger provides an embeddable loyalty points ledger for Go
// applications.
//
// Pointledger is designed as a library, not a service. Import it directly
// into your Go application. It provides:
//
//   - Append-only, hash-verified double-entry ledger entries
//   - Atomic earn/redeem/adjust/expire postings with balance guards
//   - Configurable economic controls (emission rates, burn rate,
//     redemption limits)
//   - A synchronous balance cache over store-derived balances
//   - Daily audit root aggregation for tamper evidence
//   - Filtered, paginated entry queries with per-entry verification
//
// # Quick Start
//
// Create a ledger instance with your preferred store:
//
//	import (
//	    "github.com/perknet/pointledger"
//	    "github.com/perknet/pointledger/store/sqlite"
//	)
//
//	// Initialize store
//	store, err := sqlite.Open("points.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create ledger
//	l := pointledger.New(store)
//
//	// Start the ledger (migrates, seeds sentinels, begins workers)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Accounts hold derived balances; only the posting engine writes them:
//
//	customer := &account.Account{Kind: account.KindCustomer, Name: "alice"}
//	_ = l.CreateAccount(ctx, customer)
//
// Earning converts a purchase into points via the emission rate:
//
//	res, err := l.Earn(ctx, customer.ID, business.ID, decimal.NewFromInt(100), "standard")
//
// Redeeming spends points against a ticket; a configured fraction burns:
//
//	res, err := l.Redeem(ctx, customer.ID, business.ID, 25, decimal.NewFromInt(50), "")
//
// Every committed entry carries a SHA-256 digest over its stored fields.
// Verification detects any post-write mutation:
//
//	vr, err := l.VerifyEntry(ctx, caller, entryID)
//	if !vr.Valid {
//	    // the row was tampered with
//	}
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41   // Account ID
//	entry_01h2xcejqtf2nbrexx3vqjhp41  // Entry ID
//	txn_01h455vb4pex5vsknk084sn02q    // Transaction ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package pointledger
