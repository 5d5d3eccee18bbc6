// Package audithook bridges Ledger lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on any
// particular audit system. Callers inject a RecorderFunc adapter that bridges
// to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perknet/pointledger/plugin"
	"github.com/perknet/pointledger/transaction"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnEarnPosted         = (*Extension)(nil)
	_ plugin.OnRedeemPosted       = (*Extension)(nil)
	_ plugin.OnPointsBurned       = (*Extension)(nil)
	_ plugin.OnPointsExpired      = (*Extension)(nil)
	_ plugin.OnAdjustmentPosted   = (*Extension)(nil)
	_ plugin.OnVerificationFailed = (*Extension)(nil)
	_ plugin.OnAuditRootComputed  = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Ledger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Posting hooks
// ──────────────────────────────────────────────────

// OnEarnPosted implements plugin.OnEarnPosted.
func (e *Extension) OnEarnPosted(ctx context.Context, txn interface{}) error {
	id, kv := transactionFields(txn)
	return e.record(ctx, ActionEarnPosted, SeverityInfo, OutcomeSuccess,
		ResourceTransaction, id, CategoryPosting, nil, kv...)
}

// OnRedeemPosted implements plugin.OnRedeemPosted.
func (e *Extension) OnRedeemPosted(ctx context.Context, txn interface{}) error {
	id, kv := transactionFields(txn)
	return e.record(ctx, ActionRedeemPosted, SeverityInfo, OutcomeSuccess,
		ResourceTransaction, id, CategoryPosting, nil, kv...)
}

// OnPointsBurned implements plugin.OnPointsBurned.
func (e *Extension) OnPointsBurned(ctx context.Context, txn interface{}, burned int64) error {
	id, kv := transactionFields(txn)
	kv = append(kv, "burned", burned)
	return e.record(ctx, ActionPointsBurned, SeverityInfo, OutcomeSuccess,
		ResourceTransaction, id, CategoryPosting, nil, kv...)
}

// OnPointsExpired implements plugin.OnPointsExpired.
func (e *Extension) OnPointsExpired(ctx context.Context, txn interface{}, expired int64) error {
	id, kv := transactionFields(txn)
	kv = append(kv, "expired", expired)
	return e.record(ctx, ActionPointsExpired, SeverityInfo, OutcomeSuccess,
		ResourceTransaction, id, CategoryPosting, nil, kv...)
}

// OnAdjustmentPosted implements plugin.OnAdjustmentPosted.
func (e *Extension) OnAdjustmentPosted(ctx context.Context, txn interface{}) error {
	id, kv := transactionFields(txn)
	return e.record(ctx, ActionAdjustmentPosted, SeverityWarning, OutcomeSuccess,
		ResourceTransaction, id, CategoryPosting, nil, kv...)
}

// ──────────────────────────────────────────────────
// Integrity hooks
// ──────────────────────────────────────────────────

// OnVerificationFailed implements plugin.OnVerificationFailed.
func (e *Extension) OnVerificationFailed(ctx context.Context, entryID string, storedHash, computedHash string) error {
	return e.record(ctx, ActionVerificationFailed, SeverityCritical, OutcomeFailure,
		ResourceEntry, entryID, CategoryIntegrity, nil,
		"stored_hash", storedHash,
		"computed_hash", computedHash,
	)
}

// OnAuditRootComputed implements plugin.OnAuditRootComputed.
func (e *Extension) OnAuditRootComputed(ctx context.Context, date string, rootHash string, entryCount int) error {
	return e.record(ctx, ActionAuditRootComputed, SeverityInfo, OutcomeSuccess,
		ResourceAuditRoot, date, CategoryIntegrity, nil,
		"root_hash", rootHash,
		"entry_count", entryCount,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// transactionFields extracts the resource ID and metadata pairs from a
// posted transaction. The hook payload is typed as interface{} at the
// plugin boundary.
func transactionFields(v interface{}) (string, []any) {
	txn, ok := v.(*transaction.Transaction)
	if !ok {
		return "", nil
	}
	return txn.ID.String(), []any{
		"type", string(txn.Type),
		"customer_id", txn.CustomerID.String(),
		"business_id", txn.BusinessID.String(),
		"points", txn.PointsAmount,
	}
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
