package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"FundCortex/internal/normalize"
)

// Collections persisted in the document store.
const (
	CollectionInsiderTrades = "insider_trades"
	CollectionCompanyNews   = "company_news"
)

// Store is a document store for slow-moving disclosure data. Rows are kept
// as JSON with the provider's native column names so the normalizer's
// mapping tables apply to persisted data the same way as to live fetches.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    ticker TEXT NOT NULL,
    doc_key TEXT NOT NULL,
    doc TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, ticker, doc_key)
);

CREATE INDEX IF NOT EXISTS idx_documents_ticker ON documents(collection, ticker);

CREATE TABLE IF NOT EXISTS update_status (
    collection TEXT NOT NULL,
    ticker TEXT NOT NULL,
    last_update TEXT NOT NULL,
    PRIMARY KEY (collection, ticker)
);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// InsertDocuments upserts rows keyed by keyFn. Replayed syncs replace
// rather than duplicate. Rows whose key comes back empty are skipped.
func (s *Store) InsertDocuments(ctx context.Context, collection, ticker string, rows []normalize.Row, keyFn func(normalize.Row) string) error {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(ticker) == "" {
		return fmt.Errorf("collection and ticker are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO documents (collection, ticker, doc_key, doc)
VALUES (?, ?, ?, ?)
ON CONFLICT(collection, ticker, doc_key) DO UPDATE SET
    doc=excluded.doc,
    updated_at=CURRENT_TIMESTAMP
`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		key := keyFn(row)
		if strings.TrimSpace(key) == "" {
			continue
		}
		doc, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, collection, ticker, key, string(doc)); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit documents: %w", err)
	}
	return nil
}

// QueryByTicker returns every stored row for the ticker as a raw table
// with the union of native columns.
func (s *Store) QueryByTicker(ctx context.Context, collection, ticker string) (normalize.RawTable, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT doc
FROM documents
WHERE collection = ? AND ticker = ?
ORDER BY doc_key ASC
`, collection, ticker)
	if err != nil {
		return normalize.RawTable{}, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var table normalize.RawTable
	seen := make(map[string]bool)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return normalize.RawTable{}, fmt.Errorf("scan document: %w", err)
		}
		var row normalize.Row
		if err := json.Unmarshal([]byte(doc), &row); err != nil {
			return normalize.RawTable{}, fmt.Errorf("unmarshal document: %w", err)
		}
		table.Rows = append(table.Rows, row)
		for col := range row {
			if !seen[col] {
				seen[col] = true
				table.Columns = append(table.Columns, col)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return normalize.RawTable{}, fmt.Errorf("query documents rows: %w", err)
	}
	return table, nil
}

// Count returns the number of stored documents for the ticker.
func (s *Store) Count(ctx context.Context, collection, ticker string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM documents WHERE collection = ? AND ticker = ?
`, collection, ticker)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// LastUpdate returns the recorded sync day (YYYY-MM-DD), or "" if the
// collection has never been synced for the ticker.
func (s *Store) LastUpdate(ctx context.Context, collection, ticker string) (string, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT last_update FROM update_status WHERE collection = ? AND ticker = ?
`, collection, ticker)

	var day string
	if err := row.Scan(&day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get last update: %w", err)
	}
	return day, nil
}

// SetLastUpdate records the sync day for the collection and ticker.
func (s *Store) SetLastUpdate(ctx context.Context, collection, ticker, day string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO update_status (collection, ticker, last_update)
VALUES (?, ?, ?)
ON CONFLICT(collection, ticker) DO UPDATE SET last_update=excluded.last_update
`, collection, ticker, day)
	if err != nil {
		return fmt.Errorf("set last update: %w", err)
	}
	return nil
}

// FreshToday reports whether the collection was already synced today.
func (s *Store) FreshToday(ctx context.Context, collection, ticker string) (bool, error) {
	day, err := s.LastUpdate(ctx, collection, ticker)
	if err != nil {
		return false, err
	}
	return day == time.Now().UTC().Format("2006-01-02"), nil
}
