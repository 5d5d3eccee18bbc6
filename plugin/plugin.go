// Package plugin provides an extensible plugin system for the points
// ledger. Plugins can hook into various lifecycle events to extend
// functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Posting hooks
// ──────────────────────────────────────────────────

// OnEarnPosted is called after an earn transaction commits.
type OnEarnPosted interface {
	Plugin
	OnEarnPosted(ctx context.Context, txn interface{}) error
}

// OnRedeemPosted is called after a redemption commits.
type OnRedeemPosted interface {
	Plugin
	OnRedeemPosted(ctx context.Context, txn interface{}) error
}

// OnPointsBurned is called when a redemption burns points at the sentinel.
type OnPointsBurned interface {
	Plugin
	OnPointsBurned(ctx context.Context, txn interface{}, burned int64) error
}

// OnPointsExpired is called after an expiration commits.
type OnPointsExpired interface {
	Plugin
	OnPointsExpired(ctx context.Context, txn interface{}, expired int64) error
}

// OnAdjustmentPosted is called after a manual adjustment commits.
type OnAdjustmentPosted interface {
	Plugin
	OnAdjustmentPosted(ctx context.Context, txn interface{}) error
}

// ──────────────────────────────────────────────────
// Integrity hooks
// ──────────────────────────────────────────────────

// OnVerificationFailed is called when an entry's stored hash does not match
// its recomputed hash.
type OnVerificationFailed interface {
	Plugin
	OnVerificationFailed(ctx context.Context, entryID string, storedHash, computedHash string) error
}

// OnAuditRootComputed is called when a daily audit root is computed.
type OnAuditRootComputed interface {
	Plugin
	OnAuditRootComputed(ctx context.Context, date string, rootHash string, entryCount int) error
}

// ──────────────────────────────────────────────────
// Balance hooks
// ──────────────────────────────────────────────────

// OnBalanceRefreshed is called when a cached balance is recomputed from the
// store.
type OnBalanceRefreshed interface {
	Plugin
	OnBalanceRefreshed(ctx context.Context, accountID string, balance int64) error
}

// ──────────────────────────────────────────────────
// Rate strategies
// ──────────────────────────────────────────────────

// RateStrategy provides custom emission rate resolution.
type RateStrategy interface {
	Plugin
	StrategyName() string
	EmissionRate(ctx context.Context, businessID string, tier string) (string, error) // Returns a decimal string
}
