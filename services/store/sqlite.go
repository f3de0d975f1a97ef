package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sjsage522/boxofficeworker/internal/boxoffice"
)

// Schema creates the daily box office table
const Schema = `
CREATE TABLE IF NOT EXISTS daily_box_office (
	movie_id   INTEGER NOT NULL,
	date       TEXT    NOT NULL,
	day_number INTEGER NOT NULL CHECK (day_number >= 1),
	amount     INTEGER NOT NULL CHECK (amount >= 0),
	updated_at TEXT    NOT NULL,
	PRIMARY KEY (movie_id, date)
);
`

// SQLiteStore implements Store on a SQLite database
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// UpsertDaily writes all records of one title in a single transaction
func (s *SQLiteStore) UpsertDaily(ctx context.Context, records ...boxoffice.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_box_office (movie_id, date, day_number, amount, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(movie_id, date) DO UPDATE SET
		  day_number = excluded.day_number,
		  amount = excluded.amount,
		  updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.now().UTC().Format(time.RFC3339)
	for _, r := range records {
		if _, err := stmt.ExecContext(
			ctx,
			r.MovieID,
			r.Date.Format(time.DateOnly),
			r.DayNumber,
			r.Amount,
			updatedAt,
		); err != nil {
			return fmt.Errorf("exec upsert for movie %d on %s: %w", r.MovieID, r.Date.Format(time.DateOnly), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// DailyRecords lists the stored records of a movie ordered by date
func (s *SQLiteStore) DailyRecords(ctx context.Context, movieID int) ([]boxoffice.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT movie_id, date, day_number, amount
		FROM daily_box_office
		WHERE movie_id = ?
		ORDER BY date
	`, movieID)
	if err != nil {
		return nil, fmt.Errorf("query daily records: %w", err)
	}
	defer rows.Close()

	var out []boxoffice.DailyRecord
	for rows.Next() {
		var (
			r    boxoffice.DailyRecord
			date string
		)
		if err := rows.Scan(&r.MovieID, &date, &r.DayNumber, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan daily record: %w", err)
		}
		if r.Date, err = time.Parse(time.DateOnly, date); err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
