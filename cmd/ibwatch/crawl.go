package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/amishk599/ibwatch/internal/model"
	"github.com/amishk599/ibwatch/internal/pipeline"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one crawl pass and exit",
	Long: "Fetches every active company's board, classifies the postings and upserts the " +
		"investment banking roles. Exits non-zero if the pass fails.",
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	if err := syncConfigCompanies(ctx, cfg, st); err != nil {
		logger.Warn("company names unavailable to job search", "error", err)
	}

	orch := buildOrchestrator(cfg, newDirectory(cfg, st), st, setupNotifier(cfg, logger), nil, logger)
	report, err := orch.Run(ctx)
	renderReport(report)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	return nil
}

func companyStatus(c pipeline.CompanyResult) string {
	switch {
	case c.Skipped != "":
		return "skipped (" + string(c.Skipped) + ")"
	case c.Err != nil:
		if code := model.StatusCode(c.Err); code != 0 {
			return fmt.Sprintf("failed (HTTP %d)", code)
		}
		return "failed"
	default:
		return "ok"
	}
}

// renderReport prints one row per company followed by the pass totals.
func renderReport(report *pipeline.Report) {
	if report == nil || len(report.Companies) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Company", "Connector", "Board", "Fetched", "Persisted", "New", "Status"})
	for _, c := range report.Companies {
		t.AppendRow(table.Row{c.CompanyID, c.Connector, c.Board, c.Fetched, c.Persisted, c.Inserted, companyStatus(c)})
	}
	t.AppendFooter(table.Row{
		"Total", "", "", report.TotalFetched(), report.TotalPersisted(), report.TotalInserted(),
		fmt.Sprintf("run %s", report.RunID),
	})
	t.Render()
}
