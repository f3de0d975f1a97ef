package worker

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/boxofficeworker/helpers"
	"sjsage522/boxofficeworker/internal/boxoffice"
	"sjsage522/boxofficeworker/logger"
	apperrors "sjsage522/boxofficeworker/pkg/errors"
	"sjsage522/boxofficeworker/services/feed"
	"sjsage522/boxofficeworker/services/publisher"
)

// reportKey is the stream field a run report is published under
const reportKey = "report"

// Report summarises one sync run
type Report struct {
	Success   bool                   `json:"success"`
	Results   []boxoffice.SyncResult `json:"results"`
	Error     string                 `json:"error,omitempty"`
	StartedAt time.Time              `json:"startedAt"`
	Duration  string                 `json:"duration"`
}

// Worker runs a sync over the feed's titles every syncInterval and publishes
// a report of each run
type Worker struct {
	ctx          context.Context
	feed         feed.TitleFeed
	syncer       *Syncer
	publisher    publisher.Publisher
	logger       helpers.LoggerInterface
	syncInterval time.Duration
	log          *logger.Logger
}

// NewWorker creates a new worker. pub may be nil when reports are not published.
func NewWorker(
	ctx context.Context,
	titleFeed feed.TitleFeed,
	syncer *Syncer,
	pub publisher.Publisher,
	journal helpers.LoggerInterface,
	syncInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:          ctx,
		feed:         titleFeed,
		syncer:       syncer,
		publisher:    pub,
		logger:       journal,
		syncInterval: syncInterval,
		log:          logger.ForWorker(),
	}
}

// Start runs until the worker context is done. A failed run is logged and
// retried on the next tick.
func (w *Worker) Start() error {
	for {
		start := time.Now()
		if _, err := w.RunOnce(w.ctx); err != nil {
			if w.ctx.Err() != nil {
				return nil
			}
			w.log.Error().Err(err).Msg("Sync run failed")
		}
		w.logger.LogInfo("Sync run took %s", time.Since(start))

		select {
		case <-w.ctx.Done():
			return nil
		case <-time.After(w.syncInterval):
		}
	}
}

// RunOnce fetches the tracked titles, syncs them and publishes the report.
// The report is returned even when the run stops early.
func (w *Worker) RunOnce(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now(), Results: []boxoffice.SyncResult{}}

	titles, err := w.feed.Titles(ctx)
	if err == nil {
		w.log.Info().Int("titles", len(titles)).Msg("Fetched tracked titles")

		var results []boxoffice.SyncResult
		results, err = w.syncer.SyncAll(ctx, titles)
		report.Results = append(report.Results, results...)
	} else if !apperrors.IsType(err, apperrors.ErrorTypeFeed) {
		err = apperrors.NewFeed("list tracked titles", err)
	}

	report.Success = err == nil
	if err != nil {
		report.Error = err.Error()
	}
	report.Duration = time.Since(report.StartedAt).Round(time.Millisecond).String()

	w.logSummary(report)
	w.publish(report)
	return report, err
}

func (w *Worker) logSummary(report *Report) {
	counts := make(map[boxoffice.SyncStatus]int)
	for _, r := range report.Results {
		counts[r.Status]++
	}
	w.log.Info().
		Bool("success", report.Success).
		Int("synced", counts[boxoffice.StatusSynced]).
		Int("no_data", counts[boxoffice.StatusNoData]).
		Int("skipped", counts[boxoffice.StatusSkipped]).
		Int("failed", counts[boxoffice.StatusFailed]).
		Str("duration", report.Duration).
		Msg("Sync run finished")

	if !logger.IsDebugEnabled() {
		return
	}
	for _, r := range report.Results {
		w.log.Debug().
			Int("movie_id", r.MovieID).
			Str("title", r.Title).
			Str("status", string(r.Status)).
			Int("days", r.DaysSynced).
			Str("error", r.Error).
			Msg("Title result")
	}
}

// publish sends the report and trims the stream; failures never fail the run
func (w *Worker) publish(report *Report) {
	if w.publisher == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		w.logger.LogError("SyncReport", err)
		return
	}

	if err := w.publisher.Publish(reportKey, data); err != nil {
		w.logger.LogError("SyncReport", apperrors.NewPublisher("publish report", err))
		return
	}

	if err := w.publisher.TrimStreams(); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
}
