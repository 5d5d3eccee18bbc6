// Package audit defines the daily aggregate hash records produced by the
// ledger's audit worker.
package audit

import (
	"time"

	"github.com/perknet/pointledger/id"
)

// DateFormat is the canonical key format for daily audit records. Dates are
// always interpreted in UTC.
const DateFormat = "2006-01-02"

// DailyAuditHash is the tamper-evidence root for one UTC day: the ordered
// fold of every entry hash created that day. Recomputing it for a past day
// and comparing against the stored root detects out-of-band mutation of any
// entry in that day.
type DailyAuditHash struct {
	ID         id.AuditID     `json:"id"`
	Date       string         `json:"date"`
	RootHash   string         `json:"root_hash"`
	EntryCount int            `json:"entry_count"`
	TypeCounts map[string]int `json:"type_counts,omitempty"`
	ComputedAt time.Time      `json:"computed_at"`
}

// Day returns the UTC midnight instant the record covers, or the zero time
// if Date is malformed.
func (d *DailyAuditHash) Day() time.Time {
	t, err := time.ParseInLocation(DateFormat, d.Date, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DayKey formats an instant as the canonical UTC audit date key.
func DayKey(t time.Time) string {
	return t.UTC().Format(DateFormat)
}
