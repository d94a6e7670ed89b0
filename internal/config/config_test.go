package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  path: /tmp/jobs.db
schedule: "0 */4 * * *"
http:
  timeout: 10s
rate_limit:
  min_delay: 2s
  overrides:
    lever: 5s
pipeline:
  isolate_failures: true
  concurrency: 2
companies:
  - id: acme
    name: Acme Capital
    connector: greenhouse
    config:
      board: acme
      extra_keywords: ["restructuring", "leveraged finance"]
  - id: globex
    name: Globex
    connector: lever
    active: false
    config:
      board: globex
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/jobs.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Schedule != "0 */4 * * *" {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.RateLimit.MinDelayFor("greenhouse") != 2*time.Second {
		t.Errorf("MinDelayFor(greenhouse) = %v, want 2s", cfg.RateLimit.MinDelayFor("greenhouse"))
	}
	if cfg.RateLimit.MinDelayFor("lever") != 5*time.Second {
		t.Errorf("MinDelayFor(lever) = %v, want 5s", cfg.RateLimit.MinDelayFor("lever"))
	}
	if !cfg.Pipeline.IsolateFailures || cfg.Pipeline.Concurrency != 2 {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
	if len(cfg.Companies) != 2 {
		t.Fatalf("Companies = %+v", cfg.Companies)
	}
	acme := cfg.Companies[0]
	if acme.ID != "acme" || acme.Connector != "greenhouse" || acme.Config.Board != "acme" || !acme.Active {
		t.Errorf("acme = %+v", acme)
	}
	if len(acme.Config.ExtraKeywords) != 2 || acme.Config.ExtraKeywords[1] != "leveraged finance" {
		t.Errorf("ExtraKeywords = %v", acme.Config.ExtraKeywords)
	}
	if cfg.Companies[1].Active {
		t.Error("globex should be inactive")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "companies: []\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != defaultDBPath {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Directory != DirectoryConfig {
		t.Errorf("Directory = %q", cfg.Directory)
	}
	if cfg.Schedule != defaultSchedule {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
	if cfg.HTTPTimeout != defaultHTTPTimeout || cfg.RateLimit.MinDelay != defaultMinDelay {
		t.Errorf("HTTPTimeout = %v, MinDelay = %v", cfg.HTTPTimeout, cfg.RateLimit.MinDelay)
	}
	if cfg.Pipeline.IsolateFailures || cfg.Pipeline.Concurrency != defaultConcurrency {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
}

func TestLoad_MissingBoardIsNotAnError(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
companies:
  - id: acme
    name: Acme
    connector: workday
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Companies[0].Config.Board != "" {
		t.Errorf("Board = %q, want empty", cfg.Companies[0].Config.Board)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("IBWATCH_TEST_DB_URL", "postgres://u:p@localhost:5432/ib")
	cfg, err := Load(writeConfig(t, `
database:
  driver: postgres
  url: ${IBWATCH_TEST_DB_URL}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.URL != "postgres://u:p@localhost:5432/ib" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "schedule: [broken"))
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown driver",
			content: "database:\n  driver: mysql\n",
			wantErr: "database.driver",
		},
		{
			name:    "postgres without url",
			content: "database:\n  driver: postgres\n",
			wantErr: "database.url",
		},
		{
			name:    "unknown directory",
			content: "directory: ldap\n",
			wantErr: "directory",
		},
		{
			name:    "bad schedule",
			content: "schedule: \"every tuesday\"\n",
			wantErr: "schedule",
		},
		{
			name:    "bad duration",
			content: "http:\n  timeout: soon\n",
			wantErr: "http.timeout",
		},
		{
			name:    "zero concurrency",
			content: "pipeline:\n  concurrency: 0\n",
			wantErr: "pipeline.concurrency",
		},
		{
			name:    "slack without webhook",
			content: "notification:\n  type: slack\n",
			wantErr: "webhook_url is required",
		},
		{
			name:    "slack with wrong host",
			content: "notification:\n  type: slack\n  webhook_url: https://example.com/hook\n",
			wantErr: "hooks.slack.com",
		},
		{
			name:    "company without id",
			content: "companies:\n  - name: Acme\n    connector: greenhouse\n",
			wantErr: "id is required",
		},
		{
			name:    "company without name",
			content: "companies:\n  - id: acme\n    connector: greenhouse\n",
			wantErr: "name is required",
		},
		{
			name:    "duplicate ids",
			content: "companies:\n  - id: acme\n    name: A\n  - id: acme\n    name: B\n",
			wantErr: "duplicate id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("Load: expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tc.wantErr)
			}
		})
	}
}
