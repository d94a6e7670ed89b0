package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/amishk599/ibwatch/internal/config"
	"github.com/amishk599/ibwatch/internal/model"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List configured companies",
	Long:  "Prints a table of the companies in the config, or the active companies in the database when directory is \"database\".",
	RunE:  runCompanies,
}

var companiesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy config companies into the database",
	Long:  "Inserts or updates every company from the config in the database companies table.",
	RunE:  runCompaniesSync,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
	companiesCmd.AddCommand(companiesSyncCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	companies := cfg.Companies
	source := "config"
	if cfg.Directory == config.DirectoryDatabase {
		ctx := context.Background()
		st, err := openStore(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
			return err
		}
		defer st.Close()
		if companies, err = st.ActiveCompanies(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to list companies: %v\n", err)
			return err
		}
		source = "database"
	}

	reg := buildRegistry(cfg, setupLogger(debug))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Connector", "Board", "Extra keywords", "Status"})

	active := 0
	for _, c := range companies {
		if c.Active {
			active++
		}
		t.AppendRow(table.Row{
			c.ID, c.Name, c.Connector, c.Config.Board,
			strings.Join(c.Config.ExtraKeywords, ", "),
			companyState(c, reg.Lookup),
		})
	}
	t.AppendFooter(table.Row{"Total", len(companies), "", "", fmt.Sprintf("source: %s", source), fmt.Sprintf("%d active", active)})
	t.Render()
	return nil
}

// companyState previews how a crawl pass will treat c.
func companyState(c model.Company, lookup func(string) (model.Connector, bool)) string {
	switch {
	case !c.Active:
		return "inactive"
	case strings.TrimSpace(c.Config.Board) == "":
		return "no board (skipped)"
	}
	if _, ok := lookup(c.Connector); !ok {
		return "unsupported connector (skipped)"
	}
	return "active"
}

func runCompaniesSync(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	if err := st.SyncCompanies(ctx, cfg.Companies); err != nil {
		logger.Error("company sync failed", "error", err)
		return err
	}
	logger.Info("companies synced", "count", len(cfg.Companies), "database", cfg.Database.Driver)
	return nil
}
