// Package memory provides an in-memory Store for tests and embedded use.
// Posting atomicity comes from a single mutex: the balance guard and the
// balance write happen under the same critical section, so concurrent
// postings against one account cannot both pass the guard.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/perknet/pointledger"
	"github.com/perknet/pointledger/account"
	"github.com/perknet/pointledger/audit"
	"github.com/perknet/pointledger/entry"
	"github.com/perknet/pointledger/hash"
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/store"
	"github.com/perknet/pointledger/transaction"
)

type Store struct {
	mu sync.RWMutex

	// Account storage
	accounts map[string]*account.Account

	// Entry storage, in insertion order
	entries     []*entry.Entry
	entriesByID map[string]*entry.Entry

	// Transaction storage
	transactions map[string]*transaction.Transaction

	// Daily audit storage, keyed by UTC date
	audits map[string]*audit.DailyAuditHash

	// Monotonic insertion sequence
	seq int64
}

func New() *Store {
	return &Store{
		accounts:     make(map[string]*account.Account),
		entries:      make([]*entry.Entry, 0),
		entriesByID:  make(map[string]*entry.Entry),
		transactions: make(map[string]*transaction.Transaction),
		audits:       make(map[string]*audit.DailyAuditHash),
	}
}

// Account Store implementation
func (s *Store) CreateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID.String()]; exists {
		return pointledger.ErrAlreadyExists
	}
	s.accounts[a.ID.String()] = a
	return nil
}

func (s *Store) GetAccount(_ context.Context, accountID id.AccountID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.accounts[accountID.String()]; ok {
		return a, nil
	}
	return nil, pointledger.ErrAccountNotFound
}

// Posting Store implementation
func (s *Store) InsertPosting(_ context.Context, p *store.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Transaction == nil || len(p.Entries) == 0 {
		return pointledger.ErrInvalidInput
	}
	if _, exists := s.transactions[p.Transaction.ID.String()]; exists {
		return pointledger.ErrAlreadyExists
	}

	// Stage the balance changes before touching anything, so a guard
	// failure leaves no partial state.
	staged := make(map[string]int64, len(p.Entries))
	for _, e := range p.Entries {
		a, ok := s.accounts[e.AccountID.String()]
		if !ok {
			return pointledger.ErrAccountNotFound
		}
		bal, seen := staged[e.AccountID.String()]
		if !seen {
			bal = a.Balance
		}
		next := bal + e.Credit - e.Debit
		if next < 0 && a.GuardsNegativeBalance() {
			return &pointledger.InsufficientBalanceError{
				AccountID: e.AccountID,
				Balance:   bal,
				Requested: e.Debit,
			}
		}
		staged[e.AccountID.String()] = next
		e.BalanceAfter = next
	}

	// Commit: sequence, hash, persist.
	for _, e := range p.Entries {
		s.seq++
		e.Seq = s.seq
		e.Hash = hash.ComputeEntryHash(e)
		s.entries = append(s.entries, e)
		s.entriesByID[e.ID.String()] = e
	}
	for key, bal := range staged {
		s.accounts[key].Balance = bal
		s.accounts[key].Touch()
	}
	s.transactions[p.Transaction.ID.String()] = p.Transaction
	return nil
}

func (s *Store) GetEntry(_ context.Context, entryID id.EntryID) (*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entriesByID[entryID.String()]; ok {
		return e, nil
	}
	return nil, pointledger.ErrEntryNotFound
}

func (s *Store) ListEntries(_ context.Context, f entry.Filter) ([]*entry.Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*entry.Entry, 0)
	for _, e := range s.entries {
		if !f.Matches(e) {
			continue
		}
		if f.Search != "" && !s.matchesSearch(e, f.Search) {
			continue
		}
		matched = append(matched, e)
	}

	// Newest first, insertion sequence as tiebreak.
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Seq > matched[j].Seq
	})

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// matchesSearch holds the read lock already.
func (s *Store) matchesSearch(e *entry.Entry, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(e.TransactionID.String()), needle) {
		return true
	}
	txn, ok := s.transactions[e.TransactionID.String()]
	if !ok {
		return false
	}
	biz, ok := s.accounts[txn.BusinessID.String()]
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(biz.Name), needle)
}

func (s *Store) ListByTransaction(_ context.Context, txnID id.TransactionID) ([]*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entry.Entry, 0)
	for _, e := range s.entries {
		if e.TransactionID == txnID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *Store) ListByDateRange(_ context.Context, start, end time.Time) ([]*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Inclusive start, exclusive end, oldest first.
	result := make([]*entry.Entry, 0)
	for _, e := range s.entries {
		if e.CreatedAt.Before(start) || !e.CreatedAt.Before(end) {
			continue
		}
		result = append(result, e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}

func (s *Store) GetTransaction(_ context.Context, txnID id.TransactionID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if txn, ok := s.transactions[txnID.String()]; ok {
		return txn, nil
	}
	return nil, pointledger.ErrTransactionNotFound
}

// Audit Store implementation
func (s *Store) UpsertDailyAudit(_ context.Context, d *audit.DailyAuditHash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audits[d.Date] = d
	return nil
}

func (s *Store) GetDailyAudit(_ context.Context, date string) (*audit.DailyAuditHash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.audits[date]; ok {
		return d, nil
	}
	return nil, pointledger.ErrAuditNotFound
}

// Stats Store implementation
func (s *Store) EconomyTotals(_ context.Context) (*store.EconomyTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := &store.EconomyTotals{}
	for _, e := range s.entries {
		switch e.Type {
		case entry.TypeEarn:
			totals.TotalIssued += e.Credit
		case entry.TypeRedeem:
			totals.TotalRedeemed += e.Debit
		case entry.TypeBurn:
			totals.TotalBurned += e.Credit
		case entry.TypeExpire:
			totals.TotalExpired += e.Debit
		case entry.TypeAdjustment:
			if !id.IsSystemAccount(e.AccountID) {
				totals.TotalAdjusted += e.Credit - e.Debit
			}
		}
	}
	return totals, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

var _ store.Store = (*Store)(nil)
