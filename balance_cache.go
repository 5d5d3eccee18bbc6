package pointledger

import (
	"context"
	"sync"

	"github.com/perknet/pointledger/id"
)

// balanceCache is a stale-but-advisory projection of account balances. It
// is updated synchronously after each successful commit; the store remains
// the source of truth and wins on any disagreement.
type balanceCache struct {
	mu       sync.RWMutex
	balances map[string]int64
}

func newBalanceCache() *balanceCache {
	return &balanceCache{balances: make(map[string]int64)}
}

func (c *balanceCache) get(accountID id.AccountID) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bal, ok := c.balances[accountID.String()]
	return bal, ok
}

func (c *balanceCache) set(accountID id.AccountID, balance int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[accountID.String()] = balance
}

func (c *balanceCache) invalidate(accountID id.AccountID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.balances, accountID.String())
}

// ──────────────────────────────────────────────────
// Balance Reads
// ──────────────────────────────────────────────────

// Balance returns the account's current balance, served from the cache
// when possible. Non-admin callers only read their own balance.
func (l *Ledger) Balance(ctx context.Context, caller Caller, accountID id.AccountID) (int64, error) {
	if !caller.canSee(accountID) {
		return 0, ErrAccountNotFound
	}
	if bal, ok := l.balances.get(accountID); ok {
		return bal, nil
	}
	return l.RefreshBalance(ctx, accountID)
}

// RefreshBalance bypasses the cache, reads the stored balance and
// repopulates the cache with it.
func (l *Ledger) RefreshBalance(ctx context.Context, accountID id.AccountID) (int64, error) {
	a, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		l.balances.invalidate(accountID)
		return 0, err
	}
	l.balances.set(accountID, a.Balance)
	l.plugins.EmitBalanceRefreshed(ctx, accountID.String(), a.Balance)
	return a.Balance, nil
}
