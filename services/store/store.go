package store

import (
	"context"

	"sjsage522/boxofficeworker/internal/boxoffice"
)

// Store persists daily records with upsert semantics keyed by (movie id, date)
type Store interface {
	// UpsertDaily creates or updates the records in one commit; the last write wins
	UpsertDaily(ctx context.Context, records ...boxoffice.DailyRecord) error

	// DailyRecords lists the stored records of a movie ordered by date
	DailyRecords(ctx context.Context, movieID int) ([]boxoffice.DailyRecord, error)

	// Close releases the underlying connection
	Close() error
}
