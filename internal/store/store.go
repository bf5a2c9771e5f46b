// Package store defines the document-store contract the ledger runs against.
//
// Collections hold JSON documents addressed by key. The ledger never sees
// SQL or files; both backends (memory, sqlite) implement this interface.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names used by the ledger.
const (
	Flatmates              = "flatmates"
	Expenses               = "expenses"
	Balances               = "balances"
	MonthlyContributions   = "monthlyContributions"
	ConsumptionSettlements = "consumptionSettlements"
	SettlementPayments     = "settlementPayments"
	PendingTransactions    = "pendingTransactions"
)

// ErrNotFound is returned by Get when no document exists under the key.
var ErrNotFound = errors.New("document not found")

// Record is one stored document with its key.
type Record struct {
	Key  string
	Data []byte
}

// Store is the key-value document store the ledger treats as an external
// collaborator. Reads after writes are assumed fresh; there is no
// transactional isolation (last write to a key wins).
type Store interface {
	List(ctx context.Context, collection string) ([]Record, error)
	ListOrdered(ctx context.Context, collection, sortField string, desc bool) ([]Record, error)
	Get(ctx context.Context, collection, key string) (Record, error)
	Put(ctx context.Context, collection, key string, data []byte) error
	Delete(ctx context.Context, collection, key string) error
	Close() error
}

// GetDoc reads and unmarshals a single document.
func GetDoc[T any](ctx context.Context, s Store, collection, key string) (T, error) {
	var doc T
	rec, err := s.Get(ctx, collection, key)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(rec.Data, &doc); err != nil {
		return doc, fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

// PutDoc marshals and stores a single document.
func PutDoc[T any](ctx context.Context, s Store, collection, key string, doc T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	return s.Put(ctx, collection, key, data)
}

// ListDocs reads a whole collection into a key-to-document map.
func ListDocs[T any](ctx context.Context, s Store, collection string) (map[string]T, error) {
	recs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(recs))
	for _, rec := range recs {
		var doc T
		if err := json.Unmarshal(rec.Data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, rec.Key, err)
		}
		out[rec.Key] = doc
	}
	return out, nil
}

// ListOrderedDocs reads a collection ordered by a top-level JSON field.
func ListOrderedDocs[T any](ctx context.Context, s Store, collection, sortField string, desc bool) ([]T, error) {
	recs, err := s.ListOrdered(ctx, collection, sortField, desc)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var doc T
		if err := json.Unmarshal(rec.Data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, rec.Key, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// ValidSortField keeps ListOrdered implementations from interpolating
// arbitrary input into a JSON path.
func ValidSortField(field string) bool {
	if field == "" {
		return false
	}
	for _, r := range field {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}
