package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/ibwatch/internal/model"
)

func TestGemFetch_Success(t *testing.T) {
	payload := `[
		{
			"id": "gem-1",
			"title": "Investment Banking Summer Analyst",
			"location": {"name": "New York, NY"},
			"departments": [{"name": "Advisory"}],
			"offices": [{"name": "New York"}],
			"employment_type": "Intern",
			"absolute_url": "https://jobs.gem.com/acme/gem-1",
			"first_published_at": "2026-02-01T09:00:00Z",
			"updated_at": "2026-02-03T09:00:00Z",
			"content": "<p>Live deals</p>"
		},
		{
			"id": "gem-2",
			"title": "Operations Associate",
			"location": {"name": ""},
			"absolute_url": "https://jobs.gem.com/acme/gem-2",
			"content_plain": "Plain body"
		}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/job_board/v0/acme/job_posts/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	postings, err := NewGemConnector(newTestClient(srv)).Fetch(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	p := postings[0]
	if p.ExternalID != "gem-1" || p.Location != "New York, NY" {
		t.Errorf("unexpected posting %+v", p)
	}
	if len(p.Departments) != 1 || p.Departments[0] != "Advisory" {
		t.Errorf("unexpected departments %v", p.Departments)
	}
	if len(p.Metadata) != 1 || p.Metadata[0].Value != "Intern" {
		t.Errorf("unexpected metadata %+v", p.Metadata)
	}
	if p.UpdatedAt == nil || !p.UpdatedAt.Equal(time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected UpdatedAt %v", p.UpdatedAt)
	}
	if p.CreatedAt == nil {
		t.Error("expected CreatedAt from first_published_at")
	}
	if len(p.Raw) == 0 {
		t.Error("expected raw document to be kept")
	}

	if postings[1].Content != "Plain body" {
		t.Errorf("expected plain content fallback, got %q", postings[1].Content)
	}
}

func TestGemFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewGemConnector(newTestClient(srv)).Fetch(context.Background(), "acme")
	if model.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403 HTTPError, got %v", err)
	}
}
