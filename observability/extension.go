// Package observability provides a metrics extension for Ledger that records
// lifecycle event counts via a pluggable MetricFactory.
package observability

import (
	"context"

	"github.com/perknet/pointledger/plugin"
	"github.com/perknet/pointledger/transaction"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnEarnPosted         = (*MetricsExtension)(nil)
	_ plugin.OnRedeemPosted       = (*MetricsExtension)(nil)
	_ plugin.OnPointsBurned       = (*MetricsExtension)(nil)
	_ plugin.OnPointsExpired      = (*MetricsExtension)(nil)
	_ plugin.OnAdjustmentPosted   = (*MetricsExtension)(nil)
	_ plugin.OnVerificationFailed = (*MetricsExtension)(nil)
	_ plugin.OnAuditRootComputed  = (*MetricsExtension)(nil)
	_ plugin.OnBalanceRefreshed   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Ledger plugin to automatically track point flow metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Posting metrics
	EarnPosted        Counter
	RedeemPosted      Counter
	AdjustmentPosted  Counter
	ExpirationsPosted Counter
	PointsIssued      Histogram
	PointsRedeemed    Histogram

	// Supply metrics
	PointsBurned  Counter
	PointsExpired Counter

	// Integrity metrics
	VerificationFailures Counter
	AuditRootsComputed   Counter
	AuditEntryCount      Histogram

	// Balance metrics
	BalanceRefreshes Counter

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Posting metrics
		EarnPosted:        factory.Counter("pointledger.earn.posted"),
		RedeemPosted:      factory.Counter("pointledger.redeem.posted"),
		AdjustmentPosted:  factory.Counter("pointledger.adjustment.posted"),
		ExpirationsPosted: factory.Counter("pointledger.expiration.posted"),
		PointsIssued:      factory.Histogram("pointledger.points.issued"),
		PointsRedeemed:    factory.Histogram("pointledger.points.redeemed"),

		// Supply metrics
		PointsBurned:  factory.Counter("pointledger.points.burned"),
		PointsExpired: factory.Counter("pointledger.points.expired"),

		// Integrity metrics
		VerificationFailures: factory.Counter("pointledger.verification.failures"),
		AuditRootsComputed:   factory.Counter("pointledger.audit.roots.computed"),
		AuditEntryCount:      factory.Histogram("pointledger.audit.entry_count"),

		// Balance metrics
		BalanceRefreshes: factory.Counter("pointledger.balance.refreshes"),

		// Error metrics
		StoreErrors:  factory.Counter("pointledger.store.errors"),
		PluginErrors: factory.Counter("pointledger.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Posting hooks
// ──────────────────────────────────────────────────

// OnEarnPosted implements plugin.OnEarnPosted.
func (m *MetricsExtension) OnEarnPosted(_ context.Context, txn interface{}) error {
	m.EarnPosted.Inc()
	if t, ok := txn.(*transaction.Transaction); ok {
		m.PointsIssued.Observe(float64(t.PointsAmount))
	}
	return nil
}

// OnRedeemPosted implements plugin.OnRedeemPosted.
func (m *MetricsExtension) OnRedeemPosted(_ context.Context, txn interface{}) error {
	m.RedeemPosted.Inc()
	if t, ok := txn.(*transaction.Transaction); ok {
		m.PointsRedeemed.Observe(float64(-t.PointsAmount))
	}
	return nil
}

// OnPointsBurned implements plugin.OnPointsBurned.
func (m *MetricsExtension) OnPointsBurned(_ context.Context, _ interface{}, burned int64) error {
	m.PointsBurned.Add(float64(burned))
	return nil
}

// OnPointsExpired implements plugin.OnPointsExpired.
func (m *MetricsExtension) OnPointsExpired(_ context.Context, _ interface{}, expired int64) error {
	m.ExpirationsPosted.Inc()
	m.PointsExpired.Add(float64(expired))
	return nil
}

// OnAdjustmentPosted implements plugin.OnAdjustmentPosted.
func (m *MetricsExtension) OnAdjustmentPosted(_ context.Context, _ interface{}) error {
	m.AdjustmentPosted.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Integrity hooks
// ──────────────────────────────────────────────────

// OnVerificationFailed implements plugin.OnVerificationFailed.
func (m *MetricsExtension) OnVerificationFailed(_ context.Context, _ string, _, _ string) error {
	m.VerificationFailures.Inc()
	return nil
}

// OnAuditRootComputed implements plugin.OnAuditRootComputed.
func (m *MetricsExtension) OnAuditRootComputed(_ context.Context, _ string, _ string, entryCount int) error {
	m.AuditRootsComputed.Inc()
	m.AuditEntryCount.Observe(float64(entryCount))
	return nil
}

// ──────────────────────────────────────────────────
// Balance hooks
// ──────────────────────────────────────────────────

// OnBalanceRefreshed implements plugin.OnBalanceRefreshed.
func (m *MetricsExtension) OnBalanceRefreshed(_ context.Context, _ string, _ int64) error {
	m.BalanceRefreshes.Inc()
	return nil
}
