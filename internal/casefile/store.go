// Package casefile persists screening case records in SQLite.
package casefile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/sanctionguard/internal/screening"
)

var ErrNotFound = errors.New("case not found")

const DefaultListLimit = 50

// createdLayout is fixed-width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	case_id     TEXT PRIMARY KEY,
	query       TEXT NOT NULL,
	country     TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	verdict     TEXT NOT NULL DEFAULT '',
	score       REAL NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	record      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS cases_created_at ON cases (created_at);
`

// Store keeps each case as JSON next to a few indexed columns.
type Store struct {
	db *sqlx.DB
}

// Summary is the indexed view of a case used for listings.
type Summary struct {
	ID        string  `db:"case_id" json:"id"`
	Query     string  `db:"query" json:"query"`
	Country   string  `db:"country" json:"country"`
	Status    string  `db:"status" json:"status"`
	Verdict   string  `db:"verdict" json:"verdict,omitempty"`
	Score     float64 `db:"score" json:"score"`
	CreatedAt string  `db:"created_at" json:"created_at"`
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create case db dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces the case.
func (s *Store) Save(ctx context.Context, rec screening.CaseRecord) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal case: %w", err)
	}
	verdict := ""
	if rec.Verdict != nil {
		verdict = string(rec.Verdict.Label)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cases (case_id, query, country, status, verdict, score, created_at, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.Country, string(rec.Status), verdict, rec.Score,
		rec.CreatedAt.UTC().Format(createdLayout), string(blob))
	if err != nil {
		return fmt.Errorf("save case %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (screening.CaseRecord, error) {
	var blob string
	err := s.db.GetContext(ctx, &blob, "SELECT record FROM cases WHERE case_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return screening.CaseRecord{}, ErrNotFound
	}
	if err != nil {
		return screening.CaseRecord{}, fmt.Errorf("get case %s: %w", id, err)
	}
	var rec screening.CaseRecord
	if err := json.Unmarshal([]byte(blob), &rec); err != nil {
		return screening.CaseRecord{}, fmt.Errorf("decode case %s: %w", id, err)
	}
	return rec, nil
}

// List returns the newest cases first. A non-positive limit uses DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	out := []Summary{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT case_id, query, country, status, verdict, score, created_at
		FROM cases ORDER BY created_at DESC, case_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return out, nil
}
