package pointledger_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/perknet/pointledger"
	"github.com/perknet/pointledger/account"
	"github.com/perknet/pointledger/economy"
	"github.com/perknet/pointledger/entry"
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/store/memory"
)

var adminCaller = pointledger.Caller{Role: pointledger.RoleAdmin}

func newLedger(t *testing.T, opts ...pointledger.Option) *pointledger.Ledger {
	t.Helper()
	opts = append([]pointledger.Option{pointledger.WithAuditInterval(time.Hour)}, opts...)
	l := pointledger.New(memory.New(), opts...)
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = l.Stop() })
	return l
}

func makeAccounts(t *testing.T, l *pointledger.Ledger, businessFloat int64) (customer, business *account.Account) {
	t.Helper()
	ctx := context.Background()
	customer = &account.Account{Kind: account.KindCustomer, Name: "alice"}
	if err := l.CreateAccount(ctx, customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	business = &account.Account{Kind: account.KindBusiness, Name: "Corner Cafe", Balance: businessFloat}
	if err := l.CreateAccount(ctx, business); err != nil {
		t.Fatalf("create business: %v", err)
	}
	return customer, business
}

func earn(t *testing.T, l *pointledger.Ledger, customer, business *account.Account, purchase int64) *pointledger.EarnResult {
	t.Helper()
	res, err := l.Earn(context.Background(), customer.ID, business.ID, decimal.NewFromInt(purchase), "")
	if err != nil {
		t.Fatalf("earn: %v", err)
	}
	return res
}

func TestEarnWorkedExample(t *testing.T) {
	// Business float 1000, purchase 100 at the default rate 1.0 earns 100
	// points and draws the float down to 900.
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)

	res := earn(t, l, customer, business, 100)
	if res.PointsEarned != 100 {
		t.Errorf("points earned = %d, want 100", res.PointsEarned)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}

	bal, err := l.Balance(ctx, adminCaller, customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if bal != 100 {
		t.Errorf("customer balance = %d, want 100", bal)
	}
	bal, _ = l.Balance(ctx, adminCaller, business.ID)
	if bal != 900 {
		t.Errorf("business balance = %d, want 900", bal)
	}

	// Double entry: credits equal debits within the transaction.
	var credits, debits int64
	for _, e := range res.Entries {
		credits += e.Credit
		debits += e.Debit
	}
	if credits != debits {
		t.Errorf("unbalanced posting: credits %d, debits %d", credits, debits)
	}
}

func TestEarnFloorsFractionalPoints(t *testing.T) {
	l := newLedger(t, pointledger.WithRateProvider(
		economy.FixedRateProvider{Rate: decimal.RequireFromString("0.5")},
	))
	customer, business := makeAccounts(t, l, 1000)

	res, err := l.Earn(context.Background(), customer.ID, business.ID, decimal.RequireFromString("25.50"), "")
	if err != nil {
		t.Fatal(err)
	}
	// 25.50 * 0.5 = 12.75, truncated to 12.
	if res.PointsEarned != 12 {
		t.Errorf("points earned = %d, want 12", res.PointsEarned)
	}
}

func TestEarnBusinessFloatGuard(t *testing.T) {
	l := newLedger(t)
	customer, business := makeAccounts(t, l, 50)

	_, err := l.Earn(context.Background(), customer.ID, business.ID, decimal.NewFromInt(100), "")
	if !errors.Is(err, pointledger.ErrBusinessInsufficientBalance) {
		t.Fatalf("expected ErrBusinessInsufficientBalance, got %v", err)
	}

	// Nothing committed.
	bal, _ := l.Balance(context.Background(), adminCaller, customer.ID)
	if bal != 0 {
		t.Errorf("customer balance = %d after failed earn, want 0", bal)
	}
}

func TestRedeemWorkedExample(t *testing.T) {
	// Customer balance 100, redeem 25 against a ticket of 50. At the
	// default burn rate 0.005 the burn is floor(25*0.005) = 0, so the
	// business is credited the full 25.
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	earn(t, l, customer, business, 100)

	res, err := l.Redeem(ctx, customer.ID, business.ID, 25, decimal.NewFromInt(50), "")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if res.BurnAmount != 0 {
		t.Errorf("burn = %d, want 0", res.BurnAmount)
	}
	if res.BusinessCredit != 25 {
		t.Errorf("business credit = %d, want 25", res.BusinessCredit)
	}

	bal, _ := l.Balance(ctx, adminCaller, customer.ID)
	if bal != 75 {
		t.Errorf("customer balance = %d, want 75", bal)
	}
	bal, _ = l.Balance(ctx, adminCaller, business.ID)
	if bal != 925 {
		t.Errorf("business balance = %d, want 925 (900 float + 25 credit)", bal)
	}
}

func TestRedeemBurnsAtConfiguredRate(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	earn(t, l, customer, business, 500)

	// floor(200 * 0.005) = 1 point burned.
	res, err := l.Redeem(ctx, customer.ID, business.ID, 200, decimal.NewFromInt(20), "")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if res.BurnAmount != 1 {
		t.Errorf("burn = %d, want 1", res.BurnAmount)
	}
	if res.BusinessCredit != 199 {
		t.Errorf("business credit = %d, want 199", res.BusinessCredit)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("expected 3 entries (debit, credit, burn), got %d", len(res.Entries))
	}

	var burnEntry *entry.Entry
	for _, e := range res.Entries {
		if e.Type == entry.TypeBurn {
			burnEntry = e
		}
	}
	if burnEntry == nil {
		t.Fatal("no BURN entry posted")
	}
	if burnEntry.AccountID != id.SystemBurnAccount {
		t.Errorf("burn entry account = %s, want burn sentinel", burnEntry.AccountID)
	}
	if burnEntry.Credit != 1 {
		t.Errorf("burn entry credit = %d, want 1", burnEntry.Credit)
	}
}

func TestRedeemValidation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	earn(t, l, customer, business, 500)

	// Below the 20 point minimum.
	if _, err := l.Redeem(ctx, customer.ID, business.ID, 19, decimal.NewFromInt(50), ""); !errors.Is(err, pointledger.ErrBelowMinimumRedeem) {
		t.Errorf("expected ErrBelowMinimumRedeem, got %v", err)
	}

	// 2000 points are worth 20.00, above 30 percent of a 50 ticket.
	if _, err := l.Redeem(ctx, customer.ID, business.ID, 2000, decimal.NewFromInt(50), ""); !errors.Is(err, pointledger.ErrRedemptionLimitExceeded) {
		t.Errorf("expected ErrRedemptionLimitExceeded, got %v", err)
	}

	// More than the customer holds.
	if _, err := l.Redeem(ctx, customer.ID, business.ID, 501, decimal.NewFromInt(10000), ""); !errors.Is(err, pointledger.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}

	// Balance unchanged by the rejected attempts.
	bal, _ := l.Balance(ctx, adminCaller, customer.ID)
	if bal != 500 {
		t.Errorf("customer balance = %d, want 500", bal)
	}
}

func TestConcurrentRedemptionsExactlyOneWins(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	earn(t, l, customer, business, 25)

	const attempts = 12
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Redeem(ctx, customer.ID, business.ID, 25, decimal.NewFromInt(100), "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, pointledger.ErrInsufficientBalance) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 winning redemption, got %d", successes)
	}

	bal, _ := l.RefreshBalance(ctx, customer.ID)
	if bal != 0 {
		t.Errorf("customer balance = %d, want 0", bal)
	}
}

func TestAdjust(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, _ := makeAccounts(t, l, 1000)

	if _, err := l.Adjust(ctx, customer.ID, 50, ""); !errors.Is(err, pointledger.ErrInvalidInput) {
		t.Errorf("expected validation error for missing reason, got %v", err)
	}

	res, err := l.Adjust(ctx, customer.ID, 50, "goodwill credit")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}
	bal, _ := l.Balance(ctx, adminCaller, customer.ID)
	if bal != 50 {
		t.Errorf("balance = %d after +50 adjustment, want 50", bal)
	}

	// Negative adjustment cannot overdraw the customer.
	if _, err := l.Adjust(ctx, customer.ID, -80, "claw back"); !errors.Is(err, pointledger.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}

	if _, err := l.Adjust(ctx, id.SystemBurnAccount, 10, "nope"); !errors.Is(err, pointledger.ErrInvalidInput) {
		t.Errorf("expected rejection for system account, got %v", err)
	}
}

func TestExpire(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	earn(t, l, customer, business, 100)

	res, err := l.Expire(ctx, customer.ID, 40, "expired after 12 months")
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if res.PointsExpired != 40 {
		t.Errorf("points expired = %d, want 40", res.PointsExpired)
	}

	bal, _ := l.Balance(ctx, adminCaller, customer.ID)
	if bal != 60 {
		t.Errorf("customer balance = %d, want 60", bal)
	}
	// The expired supply lands on the burn sentinel.
	bal, _ = l.Balance(ctx, adminCaller, id.SystemBurnAccount)
	if bal != 40 {
		t.Errorf("burn sentinel balance = %d, want 40", bal)
	}

	if _, err := l.Expire(ctx, customer.ID, 100, ""); !errors.Is(err, pointledger.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestVerifyEntryDetectsTampering(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	res := earn(t, l, customer, business, 100)

	target := res.Entries[1]
	vr, err := l.VerifyEntry(ctx, adminCaller, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !vr.Valid {
		t.Fatalf("fresh entry should verify: %+v", vr)
	}
	if vr.Message != "Hash verification passed" {
		t.Errorf("message = %q", vr.Message)
	}

	// Mutate the stored row out of band.
	target.Credit = 1000000

	vr, err = l.VerifyEntry(ctx, adminCaller, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	if vr.Valid {
		t.Error("tampered entry must not verify")
	}
	if vr.Message != "Hash verification FAILED" {
		t.Errorf("message = %q", vr.Message)
	}
	if vr.StoredHash == vr.ComputedHash {
		t.Error("stored and computed hashes should differ")
	}

	// A corrupted hash value itself is also detected.
	target.Credit = 100
	target.Hash = strings.Repeat("0", 64)
	vr, _ = l.VerifyEntry(ctx, adminCaller, target.ID)
	if vr.Valid {
		t.Error("corrupted hash must not verify")
	}
}

func TestQueryAuthorization(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	res := earn(t, l, customer, business, 100)

	customerEntry := res.Entries[1]
	businessEntry := res.Entries[0]

	owner := pointledger.Caller{AccountID: customer.ID, Role: pointledger.RoleCustomer}
	stranger := pointledger.Caller{AccountID: id.NewAccountID(), Role: pointledger.RoleCustomer}

	if _, err := l.GetEntry(ctx, owner, customerEntry.ID); err != nil {
		t.Errorf("owner should see own entry: %v", err)
	}
	// Foreign entries read as not found, never as forbidden.
	if _, err := l.GetEntry(ctx, stranger, customerEntry.ID); !pointledger.IsNotFound(err) {
		t.Errorf("expected not-found for stranger, got %v", err)
	}
	if _, err := l.GetEntry(ctx, owner, businessEntry.ID); !pointledger.IsNotFound(err) {
		t.Errorf("customer should not see the business side, got %v", err)
	}

	// Listing is pinned to the caller's account.
	page, err := l.ListEntries(ctx, owner, entry.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range page.Entries {
		if e.AccountID != customer.ID {
			t.Errorf("listing leaked entry for %s", e.AccountID)
		}
	}
	if _, err := l.ListEntries(ctx, owner, entry.Filter{AccountID: business.ID}); !pointledger.IsNotFound(err) {
		t.Errorf("expected not-found when requesting a foreign account, got %v", err)
	}

	// Transaction view is open to both sides.
	bizCaller := pointledger.Caller{AccountID: business.ID, Role: pointledger.RoleBusiness}
	if _, _, err := l.EntriesByTransaction(ctx, bizCaller, res.Transaction.ID); err != nil {
		t.Errorf("business should see its transaction: %v", err)
	}
	if _, _, err := l.EntriesByTransaction(ctx, stranger, res.Transaction.ID); !pointledger.IsNotFound(err) {
		t.Errorf("expected not-found for stranger transaction view, got %v", err)
	}

	// Date range scans are admin only.
	if _, err := l.EntriesByDateRange(ctx, owner, time.Now().Add(-time.Hour), time.Now()); !errors.Is(err, pointledger.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestListEntriesFilterValidation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		filter  entry.Filter
		wantErr error
		substr  string
	}{
		{"limit over ceiling", entry.Filter{Limit: 501}, pointledger.ErrLimitExceeded, "500"},
		{"negative offset", entry.Filter{Offset: -1}, pointledger.ErrInvalidRange, "offset"},
		{"inverted amounts", entry.Filter{MinAmount: i64(50), MaxAmount: i64(10)}, pointledger.ErrInvalidRange, ""},
		{"unknown type", entry.Filter{Types: []entry.Type{"BOGUS"}}, pointledger.ErrInvalidType, "BOGUS"},
		{
			"inverted dates",
			entry.Filter{Start: time.Now(), End: time.Now().Add(-time.Hour)},
			pointledger.ErrInvalidRange,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.ListEntries(ctx, adminCaller, tt.filter)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}

func i64(v int64) *int64 { return &v }

func TestDailyAuditIdempotent(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	earn(t, l, customer, business, 100)
	earn(t, l, customer, business, 200)

	today := time.Now().UTC()
	first, err := l.RunDailyAudit(ctx, today)
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if first.EntryCount != 4 {
		t.Errorf("entry count = %d, want 4", first.EntryCount)
	}
	if first.RootHash == "" {
		t.Error("root hash should not be empty")
	}
	if first.TypeCounts["EARN"] != 4 {
		t.Errorf("EARN count = %d, want 4", first.TypeCounts["EARN"])
	}

	// Re-running the same day reproduces the same root.
	second, err := l.RunDailyAudit(ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if second.RootHash != first.RootHash {
		t.Errorf("rerun changed root: %q != %q", second.RootHash, first.RootHash)
	}

	stored, err := l.GetDailyAudit(ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if stored.RootHash != first.RootHash {
		t.Errorf("stored root %q != computed %q", stored.RootHash, first.RootHash)
	}

	ok, err := l.VerifyDailyAudit(ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("untouched day should re-verify")
	}

	// Entries arriving after a run are folded in by the next run.
	earn(t, l, customer, business, 50)
	third, _ := l.RunDailyAudit(ctx, today)
	if third.EntryCount != 6 {
		t.Errorf("entry count after late arrivals = %d, want 6", third.EntryCount)
	}
	if third.RootHash == first.RootHash {
		t.Error("root should change when entries are added")
	}
}

func TestDailyAuditDetectsTampering(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	res := earn(t, l, customer, business, 100)

	today := time.Now().UTC()
	if _, err := l.RunDailyAudit(ctx, today); err != nil {
		t.Fatal(err)
	}

	// Mutate a committed entry's hash out of band.
	res.Entries[0].Hash = strings.Repeat("f", 64)

	ok, err := l.VerifyDailyAudit(ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("tampered day must fail verification")
	}
}

func TestEmptyDayAudit(t *testing.T) {
	l := newLedger(t)

	rec, err := l.RunDailyAudit(context.Background(), time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if rec.EntryCount != 0 {
		t.Errorf("entry count = %d, want 0", rec.EntryCount)
	}
	if rec.RootHash != "" {
		t.Errorf("empty day root = %q, want empty", rec.RootHash)
	}
}

func TestEconomyStats(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 10000)
	earn(t, l, customer, business, 1000)

	if _, err := l.Redeem(ctx, customer.ID, business.ID, 200, decimal.NewFromInt(20), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Expire(ctx, customer.ID, 100, "cycle end"); err != nil {
		t.Fatal(err)
	}

	stats, err := l.EconomyStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalPointsIssued != 1000 {
		t.Errorf("issued = %d, want 1000", stats.TotalPointsIssued)
	}
	if stats.TotalRedeemed != 200 {
		t.Errorf("redeemed = %d, want 200", stats.TotalRedeemed)
	}
	if stats.TotalBurned != 1 {
		t.Errorf("burned = %d, want 1", stats.TotalBurned)
	}
	if stats.TotalExpired != 100 {
		t.Errorf("expired = %d, want 100", stats.TotalExpired)
	}
	if got, want := stats.RedemptionRate, 0.2; got != want {
		t.Errorf("redemption rate = %v, want %v", got, want)
	}
	if got, want := stats.ActivePointsPercentage, 70.0; got != want {
		t.Errorf("active percentage = %v, want %v", got, want)
	}
}

func TestBalanceCacheRefresh(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	earn(t, l, customer, business, 100)

	// Cached read and forced refresh agree.
	cached, err := l.Balance(ctx, adminCaller, customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := l.RefreshBalance(ctx, customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cached != fresh {
		t.Errorf("cached %d != refreshed %d", cached, fresh)
	}

	stranger := pointledger.Caller{AccountID: id.NewAccountID(), Role: pointledger.RoleCustomer}
	if _, err := l.Balance(ctx, stranger, customer.ID); !pointledger.IsNotFound(err) {
		t.Errorf("expected not-found for foreign balance read, got %v", err)
	}
}

// recorderPlugin captures hook invocations for assertions.
type recorderPlugin struct {
	mu     sync.Mutex
	events []string
}

func (p *recorderPlugin) Name() string { return "recorder" }

func (p *recorderPlugin) record(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recorderPlugin) has(event string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == event {
			return true
		}
	}
	return false
}

func (p *recorderPlugin) OnEarnPosted(context.Context, interface{}) error {
	p.record("earn")
	return nil
}

func (p *recorderPlugin) OnRedeemPosted(context.Context, interface{}) error {
	p.record("redeem")
	return nil
}

func (p *recorderPlugin) OnPointsBurned(_ context.Context, _ interface{}, _ int64) error {
	p.record("burn")
	return nil
}

func (p *recorderPlugin) OnAuditRootComputed(_ context.Context, _ string, _ string, _ int) error {
	p.record("audit")
	return nil
}

func (p *recorderPlugin) OnVerificationFailed(_ context.Context, _, _, _ string) error {
	p.record("verify-failed")
	return nil
}

func TestPluginHooks(t *testing.T) {
	rec := &recorderPlugin{}
	l := newLedger(t, pointledger.WithPlugin(rec))
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)

	res := earn(t, l, customer, business, 500)
	if !rec.has("earn") {
		t.Error("OnEarnPosted not invoked")
	}

	if _, err := l.Redeem(ctx, customer.ID, business.ID, 200, decimal.NewFromInt(20), ""); err != nil {
		t.Fatal(err)
	}
	if !rec.has("redeem") {
		t.Error("OnRedeemPosted not invoked")
	}
	if !rec.has("burn") {
		t.Error("OnPointsBurned not invoked for a nonzero burn")
	}

	if _, err := l.RunDailyAudit(ctx, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	if !rec.has("audit") {
		t.Error("OnAuditRootComputed not invoked")
	}

	res.Entries[0].Credit += 7
	if _, err := l.VerifyEntry(ctx, adminCaller, res.Entries[0].ID); err != nil {
		t.Fatal(err)
	}
	if !rec.has("verify-failed") {
		t.Error("OnVerificationFailed not invoked")
	}
}

func TestCustomEconomics(t *testing.T) {
	cfg := economy.DefaultConfig()
	cfg.MinRedeemPoints = 5
	cfg.BurnRate = decimal.RequireFromString("0.1")
	l := newLedger(t, pointledger.WithEconomics(cfg))
	ctx := context.Background()
	customer, business := makeAccounts(t, l, 1000)
	earn(t, l, customer, business, 100)

	res, err := l.Redeem(ctx, customer.ID, business.ID, 50, decimal.NewFromInt(10), "")
	if err != nil {
		t.Fatal(err)
	}
	// floor(50 * 0.1) = 5 burned.
	if res.BurnAmount != 5 {
		t.Errorf("burn = %d, want 5", res.BurnAmount)
	}
	if res.BusinessCredit != 45 {
		t.Errorf("business credit = %d, want 45", res.BusinessCredit)
	}
}
