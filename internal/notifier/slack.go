package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/ibwatch/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// maxListed caps the postings rendered in one digest; the rest are counted.
const maxListed = 10

// SlackNotifier posts one digest per company to a Slack Incoming Webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends a Block Kit digest of records for one company. A 429 is
// honoured once using Retry-After.
func (s *SlackNotifier) Notify(ctx context.Context, companyName string, records []model.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}

	body, err := json.Marshal(buildPayload(companyName, records))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryAfter):
		}
		if status, _, err = s.post(ctx, body); err != nil {
			return fmt.Errorf("retrying slack post: %w", err)
		}
	}
	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d for %s", status, companyName)
	}

	s.logger.Info("slack digest sent", "company", companyName, "postings", len(records))
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample digest to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	now := time.Now()
	loc := "New York, NY"
	record := model.NormalizedRecord{
		CompanyID:  "ibwatch-test",
		Source:     "test",
		ExternalID: "test-001",
		Title:      "Investment Banking Summer Analyst (test notification)",
		Location:   &loc,
		URL:        "https://boards.greenhouse.io",
		RoleType:   model.RoleSeasonalAnalyst,
		Tags:       []string{model.TagInvestmentBanking},
		PostedAt:   &now,
		LastSeenAt: now,
		IsActive:   true,
	}
	return n.Notify(ctx, "ibwatch test", []model.NormalizedRecord{record})
}

func roleLabel(r model.RoleType) string {
	switch r {
	case model.RoleSeasonalAnalyst:
		return "Summer / Intern"
	case model.RoleFullTime:
		return "Full-time"
	default:
		return string(r)
	}
}

func buildPayload(companyName string, records []model.NormalizedRecord) slackPayload {
	noun := "posting"
	if len(records) != 1 {
		noun = "postings"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("%s: %d new %s", companyName, len(records), noun)},
		},
	}

	for i, r := range records {
		if i == maxListed {
			break
		}
		posted := "Just detected"
		if r.PostedAt != nil {
			posted = r.PostedAt.UTC().Format("Jan 2, 2006")
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*<%s|%s>*", r.URL, r.Title)},
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Role:*\n" + roleLabel(r.RoleType)},
				{Type: "mrkdwn", Text: "*Location:*\n" + locationText(r.Location)},
				{Type: "mrkdwn", Text: "*Posted:*\n" + posted},
			},
		})
	}

	if extra := len(records) - maxListed; extra > 0 {
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("and %d more", extra)}},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}
