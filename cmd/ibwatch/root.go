package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/ibwatch/internal/adapter"
	"github.com/amishk599/ibwatch/internal/config"
	"github.com/amishk599/ibwatch/internal/directory"
	"github.com/amishk599/ibwatch/internal/metrics"
	"github.com/amishk599/ibwatch/internal/model"
	"github.com/amishk599/ibwatch/internal/notifier"
	"github.com/amishk599/ibwatch/internal/pipeline"
	"github.com/amishk599/ibwatch/internal/ratelimit"
	"github.com/amishk599/ibwatch/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ibwatch",
	Short: "Investment banking job board watcher",
	Long: "ibwatch crawls company job boards, keeps the investment banking summer and " +
		"full-time analyst roles, and stores them for browsing.",
	// Default to a single crawl pass so cron jobs can invoke the bare binary.
	RunE:          runCrawl,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(func() {
		// A missing .env is fine; real environment variables still apply.
		_ = godotenv.Load()
	})
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: IBWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > IBWATCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("IBWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// setupNotifier returns nil when notifications are turned off.
func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, adapter.NewHTTPClient(cfg.HTTPTimeout), logger)
	case "log":
		return notifier.NewLogNotifier(logger)
	default:
		return nil
	}
}

// buildRegistry registers every supported board type behind a shared
// per-connector rate limiter.
func buildRegistry(cfg *config.Config, logger *slog.Logger) *adapter.Registry {
	reg := adapter.NewDefaultRegistry(adapter.NewHTTPClient(cfg.HTTPTimeout))
	limiter := ratelimit.NewBoardRateLimiter(cfg.RateLimit.MinDelayFor)
	reg.Wrap(func(connectorType string, c model.Connector) model.Connector {
		return ratelimit.NewRateLimitedConnector(c, limiter, connectorType)
	})
	logger.Debug("registered connectors", "types", reg.Types(), "min_delay", cfg.RateLimit.MinDelay.String())
	return reg
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	st, err := store.Open(ctx, store.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		URL:    cfg.Database.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
	}
	return st, nil
}

// newDirectory picks where active companies come from.
func newDirectory(cfg *config.Config, st store.Store) model.CompanyDirectory {
	if cfg.Directory == config.DirectoryDatabase && st != nil {
		return st
	}
	return directory.NewStatic(cfg.Companies)
}

// syncConfigCompanies mirrors the YAML companies into the store so job
// queries can match on company name. It does nothing when the database is
// already the directory.
func syncConfigCompanies(ctx context.Context, cfg *config.Config, st store.Store) error {
	if cfg.Directory == config.DirectoryDatabase || len(cfg.Companies) == 0 {
		return nil
	}
	if err := st.SyncCompanies(ctx, cfg.Companies); err != nil {
		return fmt.Errorf("syncing config companies: %w", err)
	}
	return nil
}

func buildOrchestrator(
	cfg *config.Config,
	dir model.CompanyDirectory,
	persister model.Persister,
	n model.Notifier,
	rec *metrics.Recorder,
	logger *slog.Logger,
) *pipeline.Orchestrator {
	opts := []pipeline.Option{pipeline.WithMetrics(rec)}
	if n != nil {
		opts = append(opts, pipeline.WithNotifier(n))
	}
	if cfg.Pipeline.IsolateFailures {
		opts = append(opts, pipeline.WithIsolation(cfg.Pipeline.Concurrency))
	}
	return pipeline.New(dir, buildRegistry(cfg, logger), persister, logger, opts...)
}
