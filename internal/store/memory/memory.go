// Package memory is the in-memory document store used for development and
// as the fixture backend in tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"huishoudpot/internal/store"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string][]byte
}

func New() *Store {
	return &Store{collections: make(map[string]map[string][]byte)}
}

func (s *Store) List(_ context.Context, collection string) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	out := make([]store.Record, 0, len(docs))
	for key, data := range docs {
		out = append(out, store.Record{Key: key, Data: append([]byte(nil), data...)})
	}
	// Deterministic order for callers that do not care about a sort field.
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) ListOrdered(ctx context.Context, collection, sortField string, desc bool) ([]store.Record, error) {
	if !store.ValidSortField(sortField) {
		return nil, fmt.Errorf("invalid sort field %q", sortField)
	}
	recs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		less := fieldLess(recs[i].Data, recs[j].Data, sortField)
		if desc {
			return !less
		}
		return less
	})
	return recs, nil
}

func (s *Store) Get(_ context.Context, collection, key string) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.collections[collection][key]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	return store.Record{Key: key, Data: append([]byte(nil), data...)}, nil
}

func (s *Store) Put(_ context.Context, collection, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		s.collections[collection] = docs
	}
	docs[key] = append([]byte(nil), data...)
	return nil
}

func (s *Store) Delete(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], key)
	return nil
}

func (s *Store) Close() error { return nil }

// fieldLess compares two documents by one top-level JSON field. Strings
// compare lexically (RFC 3339 timestamps order correctly that way), numbers
// numerically; a missing field sorts first.
func fieldLess(a, b []byte, field string) bool {
	av, aok := extractField(a, field)
	bv, bok := extractField(b, field)
	if !aok || !bok {
		return !aok && bok
	}
	switch x := av.(type) {
	case string:
		y, ok := bv.(string)
		return ok && x < y
	case float64:
		y, ok := bv.(float64)
		return ok && x < y
	default:
		return false
	}
}

func extractField(data []byte, field string) (any, bool) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	v, ok := doc[field]
	return v, ok
}
