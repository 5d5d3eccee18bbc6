// Package hash computes the tamper-evidence digests for ledger entries and
// daily audit roots.
//
// Every entry carries a SHA-256 digest over a canonical pipe-delimited
// envelope of its persisted fields. The envelope is versioned so that a
// future format change can coexist with historical digests. Re-deriving the
// digest from a stored row and comparing it to the stored hash detects any
// out-of-band mutation of that row.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/perknet/pointledger/entry"
)

// Version tags the canonical envelope format.
const Version = "v1"

// Size is the length in characters of an encoded digest.
const Size = 64

// canonical builds the versioned envelope for an entry. The store-assigned
// Seq is deliberately excluded: it orders entries but is not part of their
// economic content. Timestamps are normalized to UTC RFC3339Nano so the
// digest is independent of the zone the entry was created in.
func canonical(e *entry.Entry) string {
	return strings.Join([]string{
		Version,
		e.ID.String(),
		string(e.Type),
		e.AccountID.String(),
		fmt.Sprintf("%d", e.Debit),
		fmt.Sprintf("%d", e.Credit),
		e.Reason,
		e.TransactionID.String(),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		fmt.Sprintf("%d", e.BalanceAfter),
	}, "|")
}

// ComputeEntryHash returns the lowercase hex SHA-256 digest of the entry's
// canonical envelope.
func ComputeEntryHash(e *entry.Entry) string {
	sum := sha256.Sum256([]byte(canonical(e)))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the entry's digest and compares it to the stored one.
func Verify(e *entry.Entry) bool {
	return ComputeEntryHash(e) == e.Hash
}

// Chain folds the next digest into an accumulator: sha256(prev + next),
// both operands as hex strings. An empty prev starts a new chain.
func Chain(prev, next string) string {
	sum := sha256.Sum256([]byte(prev + next))
	return hex.EncodeToString(sum[:])
}

// Fold reduces an ordered sequence of entry hashes to a single root digest
// via Chain. It returns "" for an empty sequence; callers treat an empty
// root as "no entries that day".
func Fold(hashes []string) string {
	root := ""
	for _, h := range hashes {
		root = Chain(root, h)
	}
	return root
}
