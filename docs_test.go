package pointledger_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/perknet/pointledger"
	"github.com/perknet/pointledger/account"
	"github.com/perknet/pointledger/store/memory"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use SQLite in production)
		store := memory.New()

		// Initialize the ledger
		l := pointledger.New(store,
			pointledger.WithLogger(slog.Default()),
			pointledger.WithAuditInterval(time.Hour),
		)

		// Start the engine
		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		// Create a customer and a business with a point float
		customer := &account.Account{Kind: account.KindCustomer, Name: "alice"}
		if err := l.CreateAccount(ctx, customer); err != nil {
			t.Fatal(err)
		}

		business := &account.Account{
			Kind:    account.KindBusiness,
			Name:    "Corner Cafe",
			Balance: 10000,
		}
		if err := l.CreateAccount(ctx, business); err != nil {
			t.Fatal(err)
		}

		// Earn points on a purchase
		earned, err := l.Earn(ctx, customer.ID, business.ID, decimal.NewFromInt(100), "standard")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("earned %d points\n", earned.PointsEarned)

		// Redeem points against a ticket
		redeemed, err := l.Redeem(ctx, customer.ID, business.ID, 25, decimal.NewFromInt(50), "")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("redeemed %d points, burned %d\n", redeemed.PointsRedeemed, redeemed.BurnAmount)

		// Verify entry integrity
		admin := pointledger.Caller{Role: pointledger.RoleAdmin}
		vr, err := l.VerifyEntry(ctx, admin, earned.Entries[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if !vr.Valid {
			t.Fatalf("entry failed verification: %s", vr.Message)
		}

		// Read the customer balance
		bal, err := l.Balance(ctx, admin, customer.ID)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("customer balance: %d\n", bal)
	})
}
