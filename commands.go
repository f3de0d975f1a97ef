package main

import (
	"fmt"
	"strconv"

	"sjsage522/boxofficeworker/config"
	"sjsage522/boxofficeworker/helpers"
	"sjsage522/boxofficeworker/internal/boxoffice"
	"sjsage522/boxofficeworker/logger"
	apperrors "sjsage522/boxofficeworker/pkg/errors"
	"sjsage522/boxofficeworker/services/feed"
	"sjsage522/boxofficeworker/services/worker"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "boxofficeworker",
	Short:         "boxofficeworker keeps day-wise box office collections of recent releases in sync.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Syncs the tracked titles every SYNC_INTERVAL_SECONDS until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		titleFeed, err := newTitleFeed(cfg)
		if err != nil {
			return err
		}

		services, err := initializeServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer services.Cleanup()

		log := logger.ForWorker()
		log.Info().
			Str("environment", cfg.Environment).
			Dur("sync_interval", cfg.SyncInterval).
			Dur("pacing_delay", cfg.PacingDelay).
			Msg("Starting application")

		w := worker.NewWorker(ctx, titleFeed, services.Syncer(cfg), services.Publisher, services.Journal, cfg.SyncInterval)

		// Start worker in a goroutine
		workerDone := make(chan error, 1)
		go func() {
			log.Info().Msg("Starting box office worker")
			workerDone <- w.Start()
		}()

		// Wait for shutdown or worker error
		select {
		case <-ctx.Done():
			<-workerDone
		case err := <-workerDone:
			if err != nil {
				return err
			}
			log.Info().Msg("Worker exited normally")
		}

		log.Info().Msg("Shutting down gracefully...")
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Runs a single sync over the tracked titles and exits.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		titleFeed, err := newTitleFeed(cfg)
		if err != nil {
			return err
		}

		services, err := initializeServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer services.Cleanup()

		w := worker.NewWorker(ctx, titleFeed, services.Syncer(cfg), services.Publisher, services.Journal, cfg.SyncInterval)
		report, err := w.RunOnce(ctx)
		if report != nil {
			for _, r := range report.Results {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6d %-40s %s\n", r.MovieID, r.Title, describe(r))
			}
		}
		return err
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <title> <year>",
	Short: "Locates the detail page of one title and prints its day-wise collections.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid year %q: %w", args[1], err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cacheSvc := connectCache(cfg)

		fetcher := boxoffice.NewHTTPFetcher(cfg.RequestTimeout, cacheSvc, cfg.BlockTime)
		locator := boxoffice.NewLocator(cfg.SourceBaseURL, fetcher, cacheSvc, cfg.URLCacheTTL)

		page, err := locator.LocateMoviePage(cmd.Context(), args[0], year)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if page == nil {
			fmt.Fprintln(out, "No data found")
			return nil
		}

		fmt.Fprintln(out, page.URL)
		var total int64
		for _, row := range boxoffice.ExtractDailyRows(page.Document) {
			total += row.Amount
			fmt.Fprintf(out, "Day %-3d %s\n", row.Day, helpers.FormatINR(row.Amount))
		}
		fmt.Fprintf(out, "Total   %s\n", helpers.FormatINR(total))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, syncCmd, scrapeCmd)
}

// loadConfig loads and validates configuration
func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfiguration("invalid configuration", err)
	}
	return cfg, nil
}

// newTitleFeed creates the TMDB feed of recent releases
func newTitleFeed(cfg *config.Config) (feed.TitleFeed, error) {
	if !cfg.HasTMDBCredentials() {
		return nil, apperrors.NewConfiguration("TMDB_READ_ACCESS_TOKEN or TMDB_API_KEY is required", nil)
	}
	return feed.NewTMDBFeed(feed.TMDBOptions{
		BaseURL:          cfg.TMDBBaseURL,
		AccessToken:      cfg.TMDBAccessToken,
		APIKey:           cfg.TMDBAPIKey,
		OriginalLanguage: cfg.TMDBLanguage,
		ReleaseFrom:      cfg.ReleaseFrom,
		ReleaseTo:        cfg.ReleaseTo,
		Timeout:          cfg.RequestTimeout,
	}), nil
}

// describe renders a result for terminal output
func describe(r boxoffice.SyncResult) string {
	switch r.Status {
	case boxoffice.StatusSynced:
		return fmt.Sprintf("%d days", r.DaysSynced)
	case boxoffice.StatusNoData:
		return "No data found"
	default:
		if r.Error != "" {
			return fmt.Sprintf("%s: %s", r.Status, r.Error)
		}
		return string(r.Status)
	}
}
