package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/amishk599/ibwatch/internal/model"
	"github.com/amishk599/ibwatch/internal/store"
)

var (
	jobsRole    string
	jobsCompany string
	jobsQuery   string
	jobsDays    int
	jobsLimit   int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List stored postings, newest first",
	Long: "Queries active postings by role, company, free text and first-seen window. " +
		"Free text matches title, location and company name; crawl and start keep config " +
		"companies in the database so their names are searchable.",
	RunE: runJobs,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsRole, "role", "", "role type: SA (summer/intern) or FT (full-time)")
	jobsCmd.Flags().StringVar(&jobsCompany, "company", "", "company id")
	jobsCmd.Flags().StringVarP(&jobsQuery, "query", "q", "", "case-insensitive text in title, location or company name")
	jobsCmd.Flags().IntVar(&jobsDays, "days", 30, "only postings first seen in the last N days (0 for all)")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "maximum rows (0 for no limit)")
	rootCmd.AddCommand(jobsCmd)
}

func parseRole(s string) (model.RoleType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case string(model.RoleSeasonalAnalyst):
		return model.RoleSeasonalAnalyst, nil
	case string(model.RoleFullTime):
		return model.RoleFullTime, nil
	default:
		return "", fmt.Errorf("unknown role %q (want SA or FT)", s)
	}
}

func runJobs(cmd *cobra.Command, args []string) error {
	role, err := parseRole(jobsRole)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		return err
	}
	defer st.Close()

	rows, err := st.ListJobs(ctx, store.JobFilter{
		Role:      role,
		CompanyID: jobsCompany,
		Query:     jobsQuery,
		Since:     store.SinceDays(jobsDays, time.Now()),
		Limit:     jobsLimit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list jobs: %v\n", err)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"First seen", "Company", "Role", "Title", "Location", "URL"})
	for _, r := range rows {
		company := r.CompanyName
		if company == "" {
			company = r.CompanyID
		}
		loc := ""
		if r.Location != nil {
			loc = *r.Location
		}
		t.AppendRow(table.Row{r.FirstSeenAt.Local().Format("2006-01-02"), company, r.RoleType, r.Title, loc, r.URL})
	}
	t.AppendFooter(table.Row{"Total", len(rows)})
	t.Render()
	return nil
}
