package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/ibwatch/internal/metrics"
	"github.com/amishk599/ibwatch/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the crawl daemon",
	Long:  "Runs one pass immediately, then one per activation of the configured cron schedule; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger.Info("config loaded",
		"schedule", cfg.Schedule,
		"companies", len(cfg.Companies),
		"directory", cfg.Directory,
		"database", cfg.Database.Driver,
		"isolate_failures", cfg.Pipeline.IsolateFailures,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	rec := metrics.NewRecorder()
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, rec)
		logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	if err := syncConfigCompanies(ctx, cfg, st); err != nil {
		logger.Warn("company names unavailable to job search", "error", err)
	}

	orch := buildOrchestrator(cfg, newDirectory(cfg, st), st, setupNotifier(cfg, logger), rec, logger)
	sched, err := scheduler.NewScheduler(orch, cfg.Schedule, logger)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		return err
	}
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info("goodbye")
	return nil
}

func serveMetrics(addr string, rec *metrics.Recorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
