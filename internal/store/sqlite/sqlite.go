// Package sqlite stores ledger documents in a single sqlite table, one row
// per (collection, key) pair with the document as JSON text.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"huishoudpot/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, data FROM documents WHERE collection = ? ORDER BY key`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()
	return scanRecords(rows, collection)
}

func (s *Store) ListOrdered(ctx context.Context, collection, sortField string, desc bool) ([]store.Record, error) {
	if !store.ValidSortField(sortField) {
		return nil, fmt.Errorf("invalid sort field %q", sortField)
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	// sortField is validated above; the JSON path itself is bound.
	query := fmt.Sprintf(
		`SELECT key, data FROM documents WHERE collection = ? ORDER BY json_extract(data, ?) %s, key`, dir)
	rows, err := s.db.QueryContext(ctx, query, collection, "$."+sortField)
	if err != nil {
		return nil, fmt.Errorf("list %s ordered by %s: %w", collection, sortField, err)
	}
	defer rows.Close()
	return scanRecords(rows, collection)
}

func (s *Store) Get(ctx context.Context, collection, key string) (store.Record, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND key = ?`, collection, key).Scan(&data)
	if err == sql.ErrNoRows {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	return store.Record{Key: key, Data: data}, nil
}

func (s *Store) Put(ctx context.Context, collection, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, data) VALUES (?, ?, ?)
		 ON CONFLICT(collection, key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		collection, key, data)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND key = ?`, collection, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanRecords(rows *sql.Rows, collection string) ([]store.Record, error) {
	var out []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.Key, &rec.Data); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", collection, err)
	}
	return out, nil
}
