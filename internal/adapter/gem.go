package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amishk599/ibwatch/internal/model"
)

const gemBaseURL = "https://api.gem.com/job_board/v0"

// ConnectorGem is the connector type tag for Gem boards.
const ConnectorGem = "gem"

type gemJob struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Location       gemNamed   `json:"location"`
	Departments    []gemNamed `json:"departments"`
	Offices        []gemNamed `json:"offices"`
	EmploymentType string     `json:"employment_type"`
	AbsoluteURL    string     `json:"absolute_url"`
	FirstPublished string     `json:"first_published_at"`
	UpdatedAt      string     `json:"updated_at"`
	Content        string     `json:"content"`
	ContentPlain   string     `json:"content_plain"`
}

type gemNamed struct {
	Name string `json:"name"`
}

// GemConnector fetches postings from the Gem public job board API.
type GemConnector struct {
	baseURL string
	client  *http.Client
}

func NewGemConnector(client *http.Client) *GemConnector {
	return &GemConnector{
		baseURL: gemBaseURL,
		client:  client,
	}
}

// Fetch retrieves every published post on the Gem board.
func (c *GemConnector) Fetch(ctx context.Context, board string) ([]model.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s/job_posts/", c.baseURL, url.PathEscape(board))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("gem fetch for %s: %w", board, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gem fetch for %s: %w", board, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Board:      board,
			Err:        fmt.Errorf("gem fetch for %s: unexpected status %d", board, resp.StatusCode),
		}
	}

	var rawJobs []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rawJobs); err != nil {
		return nil, fmt.Errorf("gem fetch for %s: %w", board, err)
	}

	postings := make([]model.RawPosting, 0, len(rawJobs))
	for _, raw := range rawJobs {
		var gj gemJob
		if err := json.Unmarshal(raw, &gj); err != nil {
			return nil, fmt.Errorf("gem fetch for %s: decoding post: %w", board, err)
		}
		postings = append(postings, gj.toPosting(raw))
	}

	return postings, nil
}

func (gj gemJob) toPosting(raw json.RawMessage) model.RawPosting {
	p := model.RawPosting{
		ExternalID: gj.ID,
		Title:      gj.Title,
		Location:   gj.Location.Name,
		URL:        gj.AbsoluteURL,
		Content:    gj.Content,
		UpdatedAt:  parseTimestamp(gj.UpdatedAt),
		CreatedAt:  parseTimestamp(gj.FirstPublished),
		Raw:        raw,
	}
	if p.Content == "" {
		p.Content = gj.ContentPlain
	}
	for _, d := range gj.Departments {
		p.Departments = append(p.Departments, d.Name)
	}
	for _, o := range gj.Offices {
		p.Offices = append(p.Offices, o.Name)
	}
	if gj.EmploymentType != "" {
		p.Metadata = append(p.Metadata, model.MetadataField{Name: "Employment Type", Value: gj.EmploymentType})
	}
	return p
}
