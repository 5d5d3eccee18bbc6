package pointledger

import (
	"context"
	"time"

	"github.com/perknet/pointledger/audit"
	"github.com/perknet/pointledger/hash"
	"github.com/perknet/pointledger/id"
)

// ──────────────────────────────────────────────────
// Daily Audit Aggregation
// ──────────────────────────────────────────────────

// RunDailyAudit folds the hashes of every entry committed on the given UTC
// day into a single root and upserts the day's audit record. The operation
// is idempotent: re-running a day recomputes and replaces the record, so it
// tolerates entries that arrived after an earlier cutoff.
func (l *Ledger) RunDailyAudit(ctx context.Context, day time.Time) (*audit.DailyAuditHash, error) {
	start := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	entries, err := l.store.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	hashes := make([]string, len(entries))
	counts := make(map[string]int)
	for i, e := range entries {
		hashes[i] = e.Hash
		counts[string(e.Type)]++
	}

	record := &audit.DailyAuditHash{
		ID:         id.NewAuditID(),
		Date:       audit.DayKey(start),
		RootHash:   hash.Fold(hashes),
		EntryCount: len(entries),
		TypeCounts: counts,
		ComputedAt: time.Now().UTC(),
	}
	if err := l.store.UpsertDailyAudit(ctx, record); err != nil {
		return nil, err
	}

	l.logger.Info("daily audit root computed",
		"date", record.Date,
		"entry_count", record.EntryCount,
		"root_hash", record.RootHash,
	)
	l.plugins.EmitAuditRootComputed(ctx, record.Date, record.RootHash, record.EntryCount)

	return record, nil
}

// GetDailyAudit returns the stored audit record for a UTC day.
func (l *Ledger) GetDailyAudit(ctx context.Context, day time.Time) (*audit.DailyAuditHash, error) {
	return l.store.GetDailyAudit(ctx, audit.DayKey(day))
}

// VerifyDailyAudit recomputes the root for a past day and compares it with
// the stored record. A mismatch means some entry of that day was mutated
// (or added or removed) after the record was computed.
func (l *Ledger) VerifyDailyAudit(ctx context.Context, day time.Time) (bool, error) {
	stored, err := l.store.GetDailyAudit(ctx, audit.DayKey(day))
	if err != nil {
		return false, err
	}

	start := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	entries, err := l.store.ListByDateRange(ctx, start, start.Add(24*time.Hour))
	if err != nil {
		return false, err
	}
	hashes := make([]string, len(entries))
	for i, e := range entries {
		hashes[i] = e.Hash
	}
	return hash.Fold(hashes) == stored.RootHash && len(entries) == stored.EntryCount, nil
}
