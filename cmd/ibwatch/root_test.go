package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/ibwatch/internal/adapter"
	"github.com/amishk599/ibwatch/internal/config"
	"github.com/amishk599/ibwatch/internal/model"
	"github.com/amishk599/ibwatch/internal/pipeline"
	"github.com/amishk599/ibwatch/internal/store"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    model.RoleType
		wantErr bool
	}{
		{"", "", false},
		{"sa", model.RoleSeasonalAnalyst, false},
		{" FT ", model.RoleFullTime, false},
		{"VP", "", true},
	}
	for _, tc := range tests {
		got, err := parseRole(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseRole(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("parseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCompanyState(t *testing.T) {
	reg := adapter.NewDefaultRegistry(nil)
	tests := []struct {
		name    string
		company model.Company
		want    string
	}{
		{"inactive", model.Company{Connector: "greenhouse"}, "inactive"},
		{"no board", model.Company{Connector: "greenhouse", Active: true}, "no board (skipped)"},
		{"unsupported", model.Company{Connector: "workday", Active: true, Config: model.CompanyConfig{Board: "x"}}, "unsupported connector (skipped)"},
		{"active", model.Company{Connector: "lever", Active: true, Config: model.CompanyConfig{Board: "x"}}, "active"},
	}
	for _, tc := range tests {
		if got := companyState(tc.company, reg.Lookup); got != tc.want {
			t.Errorf("%s: companyState = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCompanyStatus(t *testing.T) {
	if got := companyStatus(pipeline.CompanyResult{Skipped: pipeline.SkipMissingBoard}); got != "skipped (missing_board)" {
		t.Errorf("companyStatus = %q", got)
	}
	if got := companyStatus(pipeline.CompanyResult{}); got != "ok" {
		t.Errorf("companyStatus = %q", got)
	}
	boardErr := fmt.Errorf("crawling globex: %w", &model.HTTPError{StatusCode: 503, Board: "globex"})
	if got := companyStatus(pipeline.CompanyResult{Err: boardErr}); got != "failed (HTTP 503)" {
		t.Errorf("companyStatus = %q, want failed (HTTP 503)", got)
	}
	if got := companyStatus(pipeline.CompanyResult{Err: errors.New("dial tcp: timeout")}); got != "failed" {
		t.Errorf("companyStatus = %q, want failed", got)
	}
}

func TestNewDirectory_FromConfig(t *testing.T) {
	cfg := &config.Config{
		Directory: config.DirectoryConfig,
		Companies: []model.Company{
			{ID: "acme", Name: "Acme", Connector: "greenhouse", Active: true},
			{ID: "globex", Name: "Globex", Connector: "greenhouse"},
		},
	}
	companies, err := newDirectory(cfg, nil).ActiveCompanies(context.Background())
	if err != nil {
		t.Fatalf("ActiveCompanies: %v", err)
	}
	if len(companies) != 1 || companies[0].ID != "acme" {
		t.Errorf("companies = %+v", companies)
	}
}

func TestSyncConfigCompanies_MakesCompanyNameSearchable(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, store.Options{Driver: store.DriverSQLite, Path: filepath.Join(t.TempDir(), "ibwatch.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	cfg := &config.Config{
		Directory: config.DirectoryConfig,
		Companies: []model.Company{
			{ID: "acme", Name: "Acme Capital", Connector: "greenhouse", Active: true, Config: model.CompanyConfig{Board: "acme"}},
		},
	}
	if err := syncConfigCompanies(ctx, cfg, st); err != nil {
		t.Fatalf("syncConfigCompanies: %v", err)
	}

	_, err = st.Upsert(ctx, []model.NormalizedRecord{{
		CompanyID:  "acme",
		Source:     "greenhouse",
		ExternalID: "1",
		Title:      "2026 Summer Analyst",
		URL:        "https://boards.greenhouse.io/acme/jobs/1",
		RoleType:   model.RoleSeasonalAnalyst,
		Tags:       []string{model.TagInvestmentBanking},
		LastSeenAt: time.Now(),
		IsActive:   true,
	}})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rows, err := st.ListJobs(ctx, store.JobFilter{Query: "acme capital"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(rows) != 1 || rows[0].CompanyName != "Acme Capital" {
		t.Errorf("ListJobs by company name = %+v", rows)
	}
}

func TestSyncConfigCompanies_DatabaseDirectoryUntouched(t *testing.T) {
	cfg := &config.Config{
		Directory: config.DirectoryDatabase,
		Companies: []model.Company{{ID: "acme", Name: "Acme", Connector: "greenhouse"}},
	}
	// A nil store would panic if it were used.
	if err := syncConfigCompanies(context.Background(), cfg, nil); err != nil {
		t.Fatalf("syncConfigCompanies: %v", err)
	}
}
