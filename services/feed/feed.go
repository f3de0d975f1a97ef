package feed

import (
	"context"

	"sjsage522/boxofficeworker/internal/boxoffice"
)

// TitleFeed supplies the titles to track in a run
type TitleFeed interface {
	Titles(ctx context.Context) ([]boxoffice.TrackedTitle, error)
}

// StaticFeed serves a fixed list, used by the scrape command and tests
type StaticFeed []boxoffice.TrackedTitle

// Titles returns the list unchanged
func (f StaticFeed) Titles(context.Context) ([]boxoffice.TrackedTitle, error) {
	return f, nil
}
