package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAshbyFetch_SkipsUnlisted(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": "a1",
				"title": "Summer Analyst, M&A",
				"department": "Advisory",
				"employmentType": "Intern",
				"location": "London",
				"secondaryLocations": [{"location": "Paris"}],
				"descriptionHtml": "<p>Deal execution</p>",
				"jobUrl": "https://jobs.ashbyhq.com/acme/a1",
				"publishedAt": "2026-03-01T12:00:00Z",
				"isListed": true
			},
			{
				"title": "Summer Analyst, Restructuring",
				"jobUrl": "https://jobs.ashbyhq.com/acme/legacy",
				"isListed": true
			},
			{
				"id": "a2",
				"title": "Hidden Role",
				"jobUrl": "https://jobs.ashbyhq.com/acme/a2",
				"isListed": false
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posting-api/job-board/acme" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	postings, err := NewAshbyConnector(newTestClient(srv)).Fetch(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 listed postings, got %d", len(postings))
	}

	p := postings[0]
	if p.ExternalID != "a1" {
		t.Errorf("unexpected ExternalID %s", p.ExternalID)
	}
	if len(p.Offices) != 2 || p.Offices[1] != "Paris" {
		t.Errorf("unexpected offices %v", p.Offices)
	}
	if len(p.Metadata) != 1 || p.Metadata[0].Value != "Intern" {
		t.Errorf("unexpected metadata %+v", p.Metadata)
	}
	if p.CreatedAt == nil {
		t.Error("expected CreatedAt from publishedAt")
	}

	if postings[1].ExternalID != "https://jobs.ashbyhq.com/acme/legacy" {
		t.Errorf("expected job URL fallback id, got %s", postings[1].ExternalID)
	}
}
