package sqlite

import (
	"encoding/json"
	"time"

	"github.com/perknet/pointledger/account"
	"github.com/perknet/pointledger/audit"
	"github.com/perknet/pointledger/entry"
	"github.com/perknet/pointledger/id"
	"github.com/perknet/pointledger/transaction"
	"github.com/perknet/pointledger/types"
)

// Timestamps are stored as integer unix nanoseconds so that range scans and
// ordering stay correct regardless of textual precision.

type accountRow struct {
	ID        string
	Kind      string
	Name      string
	Balance   int64
	CreatedAt int64
	UpdatedAt int64
}

func (r *accountRow) toDomain() (*account.Account, error) {
	aid, err := id.ParseAccountID(r.ID)
	if err != nil {
		return nil, err
	}
	return &account.Account{
		Entity: types.Entity{
			CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
			UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
		},
		ID:      aid,
		Kind:    account.Kind(r.Kind),
		Name:    r.Name,
		Balance: r.Balance,
	}, nil
}

type entryRow struct {
	Seq           int64
	ID            string
	TransactionID string
	AccountID     string
	Type          string
	Debit         int64
	Credit        int64
	Reason        string
	BalanceAfter  int64
	Hash          string
	CreatedAt     int64
}

func (r *entryRow) toDomain() (*entry.Entry, error) {
	eid, err := id.ParseEntryID(r.ID)
	if err != nil {
		return nil, err
	}
	tid, err := id.ParseTransactionID(r.TransactionID)
	if err != nil {
		return nil, err
	}
	aid, err := id.ParseAccountID(r.AccountID)
	if err != nil {
		return nil, err
	}
	return &entry.Entry{
		ID:            eid,
		TransactionID: tid,
		AccountID:     aid,
		Type:          entry.Type(r.Type),
		Debit:         r.Debit,
		Credit:        r.Credit,
		Reason:        r.Reason,
		BalanceAfter:  r.BalanceAfter,
		Hash:          r.Hash,
		CreatedAt:     time.Unix(0, r.CreatedAt).UTC(),
		Seq:           r.Seq,
	}, nil
}

type transactionRow struct {
	ID           string
	Type         string
	CustomerID   string
	BusinessID   string
	PointsAmount int64
	BurnAmount   int64
	CreatedAt    int64
}

func (r *transactionRow) toDomain() (*transaction.Transaction, error) {
	tid, err := id.ParseTransactionID(r.ID)
	if err != nil {
		return nil, err
	}
	cid, err := id.ParseAccountID(r.CustomerID)
	if err != nil {
		return nil, err
	}
	bid, err := id.ParseAccountID(r.BusinessID)
	if err != nil {
		return nil, err
	}
	return &transaction.Transaction{
		ID:           tid,
		Type:         transaction.Type(r.Type),
		CustomerID:   cid,
		BusinessID:   bid,
		PointsAmount: r.PointsAmount,
		BurnAmount:   r.BurnAmount,
		CreatedAt:    time.Unix(0, r.CreatedAt).UTC(),
	}, nil
}

type auditRow struct {
	Date       string
	ID         string
	RootHash   string
	EntryCount int
	TypeCounts string
	ComputedAt int64
}

func (r *auditRow) toDomain() (*audit.DailyAuditHash, error) {
	aid, err := id.ParseAuditID(r.ID)
	if err != nil {
		return nil, err
	}
	var counts map[string]int
	if r.TypeCounts != "" && r.TypeCounts != "{}" {
		if err := json.Unmarshal([]byte(r.TypeCounts), &counts); err != nil {
			return nil, err
		}
	}
	return &audit.DailyAuditHash{
		ID:         aid,
		Date:       r.Date,
		RootHash:   r.RootHash,
		EntryCount: r.EntryCount,
		TypeCounts: counts,
		ComputedAt: time.Unix(0, r.ComputedAt).UTC(),
	}, nil
}

func encodeTypeCounts(counts map[string]int) (string, error) {
	if len(counts) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
