package worker

import (
	"context"
	"time"

	"sjsage522/boxofficeworker/helpers"
	"sjsage522/boxofficeworker/internal/boxoffice"
	"sjsage522/boxofficeworker/logger"
	apperrors "sjsage522/boxofficeworker/pkg/errors"
	"sjsage522/boxofficeworker/services/store"
)

// PageLocator finds the validated detail page of a title
type PageLocator interface {
	LocateMoviePage(ctx context.Context, title string, year int) (*boxoffice.FetchedPage, error)
}

// Syncer drives locate -> extract -> upsert for each tracked title, one at a time
type Syncer struct {
	locator PageLocator
	store   store.Store
	logger  helpers.LoggerInterface
	pacing  time.Duration

	log   *logger.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSyncer creates a syncer that waits pacing between titles
func NewSyncer(locator PageLocator, st store.Store, l helpers.LoggerInterface, pacing time.Duration) *Syncer {
	return &Syncer{
		locator: locator,
		store:   st,
		logger:  l,
		pacing:  pacing,
		log:     logger.ForSync(),
		sleep:   sleepContext,
	}
}

// SyncAll syncs titles sequentially. A title's failure is recorded in its
// result; only a store failure or cancellation stops the batch, in which case
// the results gathered so far are returned with the error.
func (s *Syncer) SyncAll(ctx context.Context, titles []boxoffice.TrackedTitle) ([]boxoffice.SyncResult, error) {
	results := make([]boxoffice.SyncResult, 0, len(titles))
	contacted := false

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if _, ok := title.Release(); ok && contacted {
			if err := s.sleep(ctx, s.pacing); err != nil {
				return results, err
			}
		}

		result, err := s.SyncOne(ctx, title)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		contacted = contacted || result.Status != boxoffice.StatusSkipped
	}
	return results, nil
}

// SyncOne syncs a single title. The returned error is non-nil only when the
// store fails or ctx is done; everything else is reported in the result.
func (s *Syncer) SyncOne(ctx context.Context, title boxoffice.TrackedTitle) (boxoffice.SyncResult, error) {
	result := boxoffice.SyncResult{MovieID: title.ID, Title: title.Title}
	log := s.log.WithFields(logger.Fields{"movie_id": title.ID, "title": title.Title})

	release, ok := title.Release()
	if !ok {
		err := apperrors.NewMissingReleaseDate(title.Title, nil)
		log.Warn().Str("release_date", title.ReleaseDate).Msg("Skipping title without release date")
		result.Status = boxoffice.StatusSkipped
		result.Error = err.Error()
		return result, nil
	}

	log.Info().Int("year", release.Year()).Msg("Processing title")

	page, err := s.locator.LocateMoviePage(ctx, title.Title, release.Year())
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		s.logger.LogError(title.Title, err)
		result.Status = boxoffice.StatusFailed
		result.Error = err.Error()
		return result, nil
	}
	if page == nil {
		log.Info().Msg("No daily data found")
		result.Status = boxoffice.StatusNoData
		return result, nil
	}

	rows := boxoffice.ExtractDailyRows(page.Document)
	if len(rows) == 0 {
		log.Info().
			Str("url", page.URL).
			Err(apperrors.NewExtractionEmpty(title.Title, "no day-wise rows")).
			Msg("No daily data found")
		result.Status = boxoffice.StatusNoData
		return result, nil
	}

	records := make([]boxoffice.DailyRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, boxoffice.DailyRecord{
			MovieID:   title.ID,
			DayNumber: row.Day,
			Date:      boxoffice.DateForDay(release, row.Day),
			Amount:    row.Amount,
		})
	}

	if err := s.store.UpsertDaily(ctx, records...); err != nil {
		serr := apperrors.NewStore(title.Title, "upsert daily records", err)
		s.logger.LogError(title.Title, serr)
		return result, serr
	}

	var total int64
	for _, r := range records {
		total += r.Amount
	}
	log.Info().
		Int("days", len(records)).
		Str("url", page.URL).
		Str("total", helpers.FormatINR(total)).
		Msg("Synced daily collections")

	result.Status = boxoffice.StatusSynced
	result.DaysSynced = len(records)
	return result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
