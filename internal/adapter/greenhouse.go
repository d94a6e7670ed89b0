package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amishk599/ibwatch/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// ConnectorGreenhouse is the connector type tag for Greenhouse boards.
const ConnectorGreenhouse = "greenhouse"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          boardID              `json:"id"`
	Title       string               `json:"title"`
	Location    *greenhouseNamed     `json:"location"`
	AbsoluteURL string               `json:"absolute_url"`
	UpdatedAt   string               `json:"updated_at"`
	CreatedAt   string               `json:"created_at"`
	Departments []greenhouseNamed    `json:"departments"`
	Offices     []greenhouseNamed    `json:"offices"`
	Metadata    []greenhouseMetadata `json:"metadata"`
	Content     string               `json:"content"`
}

// boardID accepts an id encoded as either a JSON number or a string.
type boardID string

func (id *boardID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = boardID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = boardID(n.String())
	return nil
}

type greenhouseNamed struct {
	Name string `json:"name"`
}

type greenhouseMetadata struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response. Jobs are
// kept raw so each posting can carry its source document.
type greenhouseResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// GreenhouseConnector fetches postings from the Greenhouse public boards API.
type GreenhouseConnector struct {
	baseURL string
	client  *http.Client
}

// NewGreenhouseConnector creates a connector for Greenhouse boards.
func NewGreenhouseConnector(client *http.Client) *GreenhouseConnector {
	return &GreenhouseConnector{
		baseURL: greenhouseBaseURL,
		client:  client,
	}
}

// Fetch retrieves every job on the board, content included, and maps each
// onto a RawPosting.
func (c *GreenhouseConnector) Fetch(ctx context.Context, board string) ([]model.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s/jobs?content=true", c.baseURL, url.PathEscape(board))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", board, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", board, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Board:      board,
			Err:        fmt.Errorf("greenhouse fetch for %s: unexpected status %d", board, resp.StatusCode),
		}
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", board, err)
	}

	postings := make([]model.RawPosting, 0, len(ghResp.Jobs))
	for _, raw := range ghResp.Jobs {
		var gj greenhouseJob
		if err := json.Unmarshal(raw, &gj); err != nil {
			return nil, fmt.Errorf("greenhouse fetch for %s: decoding job: %w", board, err)
		}
		postings = append(postings, gj.toPosting(raw))
	}

	return postings, nil
}

func (gj greenhouseJob) toPosting(raw json.RawMessage) model.RawPosting {
	p := model.RawPosting{
		ExternalID: string(gj.ID),
		Title:      gj.Title,
		URL:        gj.AbsoluteURL,
		// Greenhouse entity-encodes the HTML body.
		Content:   html.UnescapeString(gj.Content),
		UpdatedAt: parseTimestamp(gj.UpdatedAt),
		CreatedAt: parseTimestamp(gj.CreatedAt),
		Raw:       raw,
	}
	if gj.Location != nil {
		p.Location = gj.Location.Name
	}
	for _, d := range gj.Departments {
		p.Departments = append(p.Departments, d.Name)
	}
	for _, o := range gj.Offices {
		p.Offices = append(p.Offices, o.Name)
	}
	for _, m := range gj.Metadata {
		p.Metadata = append(p.Metadata, model.MetadataField{Name: m.Name, Value: metadataValue(m.Value)})
	}
	return p
}

// metadataValue renders a Greenhouse custom field value as text. Values can
// be strings, numbers, booleans, lists or null.
func metadataValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return valueText(v)
}

func valueText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		out := ""
		for i, item := range val {
			if i > 0 {
				out += ","
			}
			out += valueText(item)
		}
		return out
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

// parseTimestamp parses an RFC 3339 board timestamp, returning nil when the
// value is absent or malformed.
func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}
