package boxoffice

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// TrackedTitle is a release supplied by the title feed
type TrackedTitle struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// Release parses the release date. ok is false when it is missing or not YYYY-MM-DD.
func (t TrackedTitle) Release() (time.Time, bool) {
	s := strings.TrimSpace(t.ReleaseDate)
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ReferenceYear is the release year used to build candidate URLs
func (t TrackedTitle) ReferenceYear() (int, bool) {
	d, ok := t.Release()
	if !ok {
		return 0, false
	}
	return d.Year(), true
}

// CandidateURL is a speculatively constructed movie detail address
type CandidateURL struct {
	URL          string
	TitleVariant string
	YearVariant  string
}

// FetchedPage is a page that passed validation
type FetchedPage struct {
	URL       string
	HTML      []byte
	Document  *goquery.Document
	FetchedAt time.Time
}

// DailyRow is one day-wise cell pair extracted from the collection table
type DailyRow struct {
	Day    int   `json:"day"`
	Amount int64 `json:"amount"`
}

// DailyRecord is the persisted form of a DailyRow, unique per (MovieID, Date)
type DailyRecord struct {
	MovieID   int       `json:"movie_id"`
	DayNumber int       `json:"day_number"`
	Date      time.Time `json:"date"`
	Amount    int64     `json:"amount"`
}

// DateForDay maps a 1-indexed day of the run onto the calendar
func DateForDay(release time.Time, day int) time.Time {
	return release.AddDate(0, 0, day-1)
}

// SyncStatus is the per-title outcome of a sync run
type SyncStatus string

const (
	StatusSynced  SyncStatus = "Synced"
	StatusNoData  SyncStatus = "NoData"
	StatusSkipped SyncStatus = "Skipped"
	StatusFailed  SyncStatus = "Failed"
)

// SyncResult reports what happened to one title. It is never persisted.
type SyncResult struct {
	MovieID    int
	Title      string
	DaysSynced int
	Status     SyncStatus
	Error      string
}

type syncReport struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	DaysSynced *int   `json:"daysSynced,omitempty"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MarshalJSON renders the report shape consumed by callers:
// {id,title,daysSynced} on success and {id,title,status} otherwise.
func (r SyncResult) MarshalJSON() ([]byte, error) {
	out := syncReport{ID: r.MovieID, Title: r.Title, Error: r.Error}
	switch r.Status {
	case StatusSynced:
		days := r.DaysSynced
		out.DaysSynced = &days
	case StatusNoData:
		out.Status = "No data found"
	default:
		out.Status = string(r.Status)
	}
	return json.Marshal(out)
}
