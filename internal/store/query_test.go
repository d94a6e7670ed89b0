package store

import (
	"strings"
	"testing"
	"time"

	"github.com/amishk599/ibwatch/internal/model"
)

func TestBuildListQuery_NoFilters(t *testing.T) {
	query, args := buildListQuery(postgresDialect, JobFilter{})

	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
	if !strings.Contains(query, "j.is_active = TRUE") {
		t.Errorf("expected active-only filter, got:\n%s", query)
	}
	if !strings.Contains(query, "ORDER BY j.first_seen_at DESC") {
		t.Errorf("expected newest-first ordering, got:\n%s", query)
	}
	if strings.Contains(query, "LIMIT") {
		t.Errorf("expected no LIMIT, got:\n%s", query)
	}
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	since := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	query, args := buildListQuery(postgresDialect, JobFilter{
		Role:      model.RoleFullTime,
		CompanyID: "acme",
		Query:     " 50%_off ",
		Since:     since,
		Limit:     25,
	})

	for _, want := range []string{
		"j.role_type = $1",
		"j.company_id = $2",
		"j.first_seen_at >= $3",
		"j.title ILIKE $4",
		"c.name ILIKE $4",
		"LIMIT $5",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(args), args)
	}
	if args[0] != "FT" || args[1] != "acme" || args[4] != 25 {
		t.Errorf("unexpected args %v", args)
	}
	if got, ok := args[2].(time.Time); !ok || !got.Equal(since) {
		t.Errorf("since arg = %v, want %v", args[2], since)
	}
	if args[3] != `%50\%\_off%` {
		t.Errorf("search arg = %q", args[3])
	}
}

func TestBuildListQuery_SQLiteDialect(t *testing.T) {
	since := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	query, args := buildListQuery(sqliteDialect, JobFilter{Query: "ny", Since: since})

	if !strings.Contains(query, "j.is_active = 1") {
		t.Errorf("expected integer boolean, got:\n%s", query)
	}
	if !strings.Contains(query, "j.location LIKE ?2") {
		t.Errorf("expected numbered LIKE placeholder, got:\n%s", query)
	}
	if args[0] != formatTime(since) {
		t.Errorf("expected formatted time arg, got %v", args[0])
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain":      "plain",
		"100%":       `100\%`,
		"a_b":        `a\_b`,
		`back\slash`: `back\\slash`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSinceDays(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	if got := SinceDays(0, now); !got.IsZero() {
		t.Errorf("SinceDays(0) = %v, want zero", got)
	}
	if got := SinceDays(30, now); !got.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("SinceDays(30) = %v", got)
	}
}
