package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amishk599/ibwatch/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// ConnectorLever is the connector type tag for Lever boards.
const ConnectorLever = "lever"

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

type leverList struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	Description   string          `json:"description"`
	Lists         []leverList     `json:"lists"`
	Additional    string          `json:"additional"`
	Categories    leverCategories `json:"categories"`
	CreatedAt     int64           `json:"createdAt"`
	WorkplaceType string          `json:"workplaceType"`
	HostedURL     string          `json:"hostedUrl"`
}

// LeverConnector fetches postings from the Lever public postings API.
type LeverConnector struct {
	baseURL string
	client  *http.Client
}

// NewLeverConnector creates a connector for Lever boards.
func NewLeverConnector(client *http.Client) *LeverConnector {
	return &LeverConnector{
		baseURL: leverBaseURL,
		client:  client,
	}
}

// Fetch retrieves all postings for the Lever company slug.
func (c *LeverConnector) Fetch(ctx context.Context, board string) ([]model.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s?mode=json", c.baseURL, url.PathEscape(board))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", board, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", board, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Board:      board,
			Err:        fmt.Errorf("lever fetch for %s: unexpected status %d", board, resp.StatusCode),
		}
	}

	var rawJobs []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rawJobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", board, err)
	}

	postings := make([]model.RawPosting, 0, len(rawJobs))
	for _, raw := range rawJobs {
		var lj leverJob
		if err := json.Unmarshal(raw, &lj); err != nil {
			return nil, fmt.Errorf("lever fetch for %s: decoding posting: %w", board, err)
		}
		postings = append(postings, lj.toPosting(raw))
	}

	return postings, nil
}

func (lj leverJob) toPosting(raw json.RawMessage) model.RawPosting {
	p := model.RawPosting{
		ExternalID: lj.ID,
		Title:      lj.Text,
		Location:   lj.Categories.Location,
		Offices:    lj.Categories.AllLocations,
		URL:        lj.HostedURL,
		Raw:        raw,
	}

	for _, d := range []string{lj.Categories.Department, lj.Categories.Team} {
		if d != "" {
			p.Departments = append(p.Departments, d)
		}
	}
	if lj.Categories.Commitment != "" {
		p.Metadata = append(p.Metadata, model.MetadataField{Name: "Commitment", Value: lj.Categories.Commitment})
	}
	if lj.WorkplaceType != "" {
		p.Metadata = append(p.Metadata, model.MetadataField{Name: "Workplace Type", Value: lj.WorkplaceType})
	}

	// Lever splits the body into a description, titled lists and a closing section.
	body := []string{lj.Description}
	for _, l := range lj.Lists {
		body = append(body, "<h3>"+l.Text+"</h3>", l.Content)
	}
	body = append(body, lj.Additional)
	p.Content = strings.Join(body, "\n")

	// createdAt is Unix milliseconds.
	if lj.CreatedAt > 0 {
		t := time.UnixMilli(lj.CreatedAt).UTC()
		p.CreatedAt = &t
	}

	return p
}
