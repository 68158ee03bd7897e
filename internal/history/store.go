// Package history persists one-minute bars so strategies can warm up from
// recent sessions through the host's LoadBar.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ctabot-go/internal/signal"
)

const schema = `
CREATE TABLE IF NOT EXISTS bars (
	symbol   TEXT    NOT NULL,
	exchange TEXT    NOT NULL DEFAULT '',
	ts       INTEGER NOT NULL,
	open     REAL    NOT NULL,
	high     REAL    NOT NULL,
	low      REAL    NOT NULL,
	close    REAL    NOT NULL,
	PRIMARY KEY (symbol, ts)
);`

// Store is a sqlite-backed bar archive.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// sqlite serialises writers; one connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save upserts a bar keyed on symbol and start time.
func (s *Store) Save(ctx context.Context, b signal.Bar) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bars (symbol, exchange, ts, open, high, low, close)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(symbol, ts) DO UPDATE SET
		   exchange = excluded.exchange, open = excluded.open, high = excluded.high,
		   low = excluded.low, close = excluded.close`,
		b.Symbol, b.Exchange, b.Ts.UnixMilli(), b.Open, b.High, b.Low, b.Close)
	if err != nil {
		return fmt.Errorf("save bar: %w", err)
	}
	return nil
}

// Since returns bars for symbol starting at or after from, oldest first.
func (s *Store) Since(ctx context.Context, symbol string, from time.Time) ([]signal.Bar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, exchange, ts, open, high, low, close
		   FROM bars WHERE symbol = ? AND ts >= ? ORDER BY ts`,
		symbol, from.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var out []signal.Bar
	for rows.Next() {
		var (
			b  signal.Bar
			ts int64
		)
		if err := rows.Scan(&b.Symbol, &b.Exchange, &ts, &b.Open, &b.High, &b.Low, &b.Close); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Ts = time.UnixMilli(ts).UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return out, nil
}

// LoadDays returns the last days of bars for symbol, oldest first.
func (s *Store) LoadDays(ctx context.Context, symbol string, days int) ([]signal.Bar, error) {
	if days <= 0 {
		return nil, nil
	}
	return s.Since(ctx, symbol, s.now().AddDate(0, 0, -days))
}
