package memory

import (
	"context"
	"errors"
	"testing"

	"huishoudpot/internal/store"
)

func TestPutGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, store.Expenses, "e1", []byte(`{"name":"milk"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, err := s.Get(ctx, store.Expenses, "e1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(rec.Data) != `{"name":"milk"}` {
		t.Errorf("unexpected data: %s", rec.Data)
	}

	if _, err := s.Get(ctx, store.Expenses, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.Delete(ctx, store.Expenses, "e1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, store.Expenses, "e1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, store.Balances, "alice", []byte(`{"balance":10}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, _ := s.Get(ctx, store.Balances, "alice")
	rec.Data[0] = 'X'

	again, _ := s.Get(ctx, store.Balances, "alice")
	if string(again.Data) != `{"balance":10}` {
		t.Errorf("stored data mutated through returned slice: %s", again.Data)
	}
}

func TestListSortedByKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		if err := s.Put(ctx, store.Flatmates, key, []byte(`{}`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	recs, err := s.List(ctx, store.Flatmates)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(recs) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(recs))
	}
	for i, rec := range recs {
		if rec.Key != want[i] {
			t.Errorf("record %d: expected key %s, got %s", i, want[i], rec.Key)
		}
	}
}

func TestListOrdered(t *testing.T) {
	s := New()
	ctx := context.Background()

	docs := map[string]string{
		"e1": `{"timestamp":"2024-03-05T10:00:00Z","amount":30}`,
		"e2": `{"timestamp":"2024-01-15T10:00:00Z","amount":12.5}`,
		"e3": `{"timestamp":"2024-02-01T10:00:00Z","amount":7}`,
	}
	for key, data := range docs {
		if err := s.Put(ctx, store.Expenses, key, []byte(data)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	tests := []struct {
		name      string
		sortField string
		desc      bool
		want      []string
	}{
		{"timestamp ascending", "timestamp", false, []string{"e2", "e3", "e1"}},
		{"timestamp descending", "timestamp", true, []string{"e1", "e3", "e2"}},
		{"amount ascending", "amount", false, []string{"e3", "e2", "e1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.ListOrdered(ctx, store.Expenses, tt.sortField, tt.desc)
			if err != nil {
				t.Fatalf("ListOrdered failed: %v", err)
			}
			if len(recs) != len(tt.want) {
				t.Fatalf("expected %d records, got %d", len(tt.want), len(recs))
			}
			for i, rec := range recs {
				if rec.Key != tt.want[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.want[i], rec.Key)
				}
			}
		})
	}
}

func TestListOrderedRejectsBadField(t *testing.T) {
	s := New()
	if _, err := s.ListOrdered(context.Background(), store.Expenses, "timestamp; DROP TABLE", false); err == nil {
		t.Error("expected error for invalid sort field")
	}
}

func TestTypedHelpers(t *testing.T) {
	type doc struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	s := New()
	ctx := context.Background()

	if err := store.PutDoc(ctx, s, store.Expenses, "e1", doc{Name: "beer", Amount: 6}); err != nil {
		t.Fatalf("PutDoc failed: %v", err)
	}

	got, err := store.GetDoc[doc](ctx, s, store.Expenses, "e1")
	if err != nil {
		t.Fatalf("GetDoc failed: %v", err)
	}
	if got.Name != "beer" || got.Amount != 6 {
		t.Errorf("unexpected doc: %+v", got)
	}

	all, err := store.ListDocs[doc](ctx, s, store.Expenses)
	if err != nil {
		t.Fatalf("ListDocs failed: %v", err)
	}
	if len(all) != 1 || all["e1"].Name != "beer" {
		t.Errorf("unexpected map: %+v", all)
	}
}
