package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/amishk599/ibwatch/internal/config"
	"github.com/amishk599/ibwatch/internal/model"
	"github.com/amishk599/ibwatch/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Crawl once, print accepted postings, exit",
	Long:  "Dry run: fetches and classifies every active company like crawl, prints what would be stored and writes nothing.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// capturePersister collects accepted records on top of a NopStore.
type capturePersister struct {
	store.NopStore
	mu      sync.Mutex
	records []model.NormalizedRecord
}

func (c *capturePersister) Upsert(ctx context.Context, records []model.NormalizedRecord) (model.UpsertResult, error) {
	c.mu.Lock()
	c.records = append(c.records, records...)
	c.mu.Unlock()
	return c.NopStore.Upsert(ctx, records)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	logger.Info("check mode: nothing will be written")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The database is only needed when it is the company source.
	var dir model.CompanyDirectory
	if cfg.Directory == config.DirectoryDatabase {
		st, err := openStore(ctx, cfg)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			return err
		}
		defer st.Close()
		dir = st
	} else {
		dir = newDirectory(cfg, nil)
	}

	capture := &capturePersister{}
	report, err := buildOrchestrator(cfg, dir, capture, nil, nil, logger).Run(ctx)
	renderReport(report)
	renderRecords(capture.records)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	logger.Info("check complete", "accepted", len(capture.records))
	return nil
}

func renderRecords(records []model.NormalizedRecord) {
	if len(records) == 0 {
		fmt.Println("No postings accepted.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Company", "Role", "Title", "Location", "URL"})
	for _, r := range records {
		loc := ""
		if r.Location != nil {
			loc = *r.Location
		}
		t.AppendRow(table.Row{r.CompanyID, r.RoleType, r.Title, loc, r.URL})
	}
	t.Render()
}
