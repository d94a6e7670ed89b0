package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amishk599/ibwatch/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ConnectorAshby is the connector type tag for Ashby boards.
const ConnectorAshby = "ashby"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Department         string          `json:"department"`
	Team               string          `json:"team"`
	EmploymentType     string          `json:"employmentType"`
	Location           string          `json:"location"`
	SecondaryLocations []ashbyLocation `json:"secondaryLocations"`
	DescriptionHTML    string          `json:"descriptionHtml"`
	JobURL             string          `json:"jobUrl"`
	PublishedAt        string          `json:"publishedAt"`
	IsListed           bool            `json:"isListed"`
}

type ashbyLocation struct {
	Location string `json:"location"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// AshbyConnector fetches postings from the Ashby public job board API.
type AshbyConnector struct {
	baseURL string
	client  *http.Client
}

// NewAshbyConnector creates a connector for Ashby job boards.
func NewAshbyConnector(client *http.Client) *AshbyConnector {
	return &AshbyConnector{
		baseURL: ashbyBaseURL,
		client:  client,
	}
}

// Fetch retrieves the listed jobs on an Ashby board. Unlisted jobs are skipped.
func (c *AshbyConnector) Fetch(ctx context.Context, board string) ([]model.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(board))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", board, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", board, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Board:      board,
			Err:        fmt.Errorf("ashby fetch for %s: unexpected status %d", board, resp.StatusCode),
		}
	}

	var ashbyResp ashbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&ashbyResp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", board, err)
	}

	postings := make([]model.RawPosting, 0, len(ashbyResp.Jobs))
	for _, raw := range ashbyResp.Jobs {
		var aj ashbyJob
		if err := json.Unmarshal(raw, &aj); err != nil {
			return nil, fmt.Errorf("ashby fetch for %s: decoding job: %w", board, err)
		}
		if !aj.IsListed {
			continue
		}
		postings = append(postings, aj.toPosting(raw))
	}

	return postings, nil
}

func (aj ashbyJob) toPosting(raw json.RawMessage) model.RawPosting {
	p := model.RawPosting{
		ExternalID: aj.ID,
		Title:      aj.Title,
		Location:   aj.Location,
		Content:    aj.DescriptionHTML,
		URL:        aj.JobURL,
		CreatedAt:  parseTimestamp(aj.PublishedAt),
		Raw:        raw,
	}
	// Older boards omit the id; the job URL is stable per posting.
	if p.ExternalID == "" {
		p.ExternalID = aj.JobURL
	}
	for _, d := range []string{aj.Department, aj.Team} {
		if d != "" {
			p.Departments = append(p.Departments, d)
		}
	}
	if aj.Location != "" {
		p.Offices = append(p.Offices, aj.Location)
	}
	for _, l := range aj.SecondaryLocations {
		p.Offices = append(p.Offices, l.Location)
	}
	if aj.EmploymentType != "" {
		p.Metadata = append(p.Metadata, model.MetadataField{Name: "Employment Type", Value: aj.EmploymentType})
	}
	return p
}
