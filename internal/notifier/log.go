package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/ibwatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly seen postings to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one line per record. It never fails.
func (n *LogNotifier) Notify(_ context.Context, companyName string, records []model.NormalizedRecord) error {
	for _, r := range records {
		args := []any{
			"company", companyName,
			"title", r.Title,
			"role_type", r.RoleType,
			"location", locationText(r.Location),
			"url", r.URL,
		}
		if r.PostedAt != nil {
			args = append(args, "posted_at", *r.PostedAt)
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}

func locationText(loc *string) string {
	if loc == nil || *loc == "" {
		return "Not listed"
	}
	return *loc
}
