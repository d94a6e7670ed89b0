// Package pipeline runs one crawl pass: for every active company it fetches
// the board, classifies each posting and upserts the survivors.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/ibwatch/internal/classify"
	"github.com/amishk599/ibwatch/internal/metrics"
	"github.com/amishk599/ibwatch/internal/model"
	"github.com/amishk599/ibwatch/internal/normalize"
)

// ConnectorResolver maps a company's connector tag to a Connector.
type ConnectorResolver interface {
	Lookup(connectorType string) (model.Connector, bool)
}

// Orchestrator owns the crawl → classify → persist pass across companies.
type Orchestrator struct {
	directory  model.CompanyDirectory
	connectors ConnectorResolver
	persister  model.Persister
	notifier   model.Notifier
	metrics    *metrics.Recorder
	now        func() time.Time
	logger     *slog.Logger

	isolate     bool
	concurrency int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier announces records the persister reports as new.
func WithNotifier(n model.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = r }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIsolation crawls up to concurrency companies at once and keeps going
// when one of them fails. The pass then ends with ErrPartialFailure instead
// of the first company's error.
func WithIsolation(concurrency int) Option {
	return func(o *Orchestrator) {
		o.isolate = true
		o.concurrency = max(concurrency, 1)
	}
}

// New creates an orchestrator wired with all its dependencies.
func New(
	directory model.CompanyDirectory,
	connectors ConnectorResolver,
	persister model.Persister,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		directory:   directory,
		connectors:  connectors,
		persister:   persister,
		now:         time.Now,
		logger:      logger,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one pass. Every record written in the pass shares the same
// last-seen timestamp.
//
// In the default mode companies run one after another and the first fetch or
// persistence error ends the pass; records already written for earlier
// companies stay. The returned Report is never nil.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), StartedAt: o.now()}
	logger := o.logger.With("run_id", report.RunID)

	err := o.run(ctx, logger, report)

	report.FinishedAt = o.now()
	o.metrics.RunFinished(report.StartedAt, report.FinishedAt, err)

	attrs := []any{
		"companies", len(report.Companies),
		"skipped", len(report.Skipped()),
		"failed", len(report.Failed()),
		"fetched", report.TotalFetched(),
		"persisted", report.TotalPersisted(),
		"new", report.TotalInserted(),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	}
	if err != nil {
		logger.Error("crawl pass failed", append(attrs, "error", err)...)
		return report, err
	}
	logger.Info("crawl pass finished", attrs...)
	return report, nil
}

func (o *Orchestrator) run(ctx context.Context, logger *slog.Logger, report *Report) error {
	companies, err := o.directory.ActiveCompanies(ctx)
	if err != nil {
		return fmt.Errorf("listing active companies: %w", err)
	}
	logger.Info("crawl pass started", "companies", len(companies), "isolated", o.isolate)

	seenAt := report.StartedAt

	if !o.isolate {
		for _, c := range companies {
			res := o.crawlCompany(ctx, logger, c, seenAt)
			report.Companies = append(report.Companies, res)
			if res.Err != nil {
				return res.Err
			}
		}
		return nil
	}

	results := make([]CompanyResult, len(companies))
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, c := range companies {
		i, c := i, c
		g.Go(func() error {
			results[i] = o.crawlCompany(ctx, logger, c, seenAt)
			return nil
		})
	}
	_ = g.Wait()
	report.Companies = results

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrPartialFailure, strings.Join(failed, ", "))
	}
	return nil
}

// crawlCompany runs fetch → classify → persist for a single company.
// Configuration gaps come back as a skip; I/O failures come back in Err.
func (o *Orchestrator) crawlCompany(ctx context.Context, logger *slog.Logger, c model.Company, seenAt time.Time) CompanyResult {
	res := CompanyResult{
		CompanyID: c.ID,
		Name:      c.Name,
		Connector: c.Connector,
		Board:     strings.TrimSpace(c.Config.Board),
	}
	logger = logger.With("company", c.ID, "connector", c.Connector)

	connector, ok := o.connectors.Lookup(c.Connector)
	if !ok {
		res.Skipped = SkipUnsupportedConnector
		o.metrics.CompanySkipped(string(res.Skipped))
		logger.Warn("skipping company: unsupported connector")
		return res
	}
	if res.Board == "" {
		res.Skipped = SkipMissingBoard
		o.metrics.CompanySkipped(string(res.Skipped))
		logger.Warn("skipping company: no board configured")
		return res
	}

	postings, err := connector.Fetch(ctx, res.Board)
	if err != nil {
		o.metrics.CompanyFailed(c.Connector)
		res.Err = fmt.Errorf("crawling %s: %w", c.ID, err)
		return res
	}
	res.Fetched = len(postings)
	o.metrics.PostingsFetched(c.Connector, len(postings))

	records, dropped := o.classifyPostings(logger, c, postings, seenAt)
	res.Dropped = dropped

	if len(records) > 0 {
		result, err := o.persister.Upsert(ctx, records)
		if err != nil {
			o.metrics.CompanyFailed(c.Connector)
			res.Err = fmt.Errorf("crawling %s: persisting: %w", c.ID, err)
			return res
		}
		res.Persisted = len(records)
		res.Inserted = result.Inserted
		o.metrics.RecordsPersisted(c.ID, res.Persisted, res.Inserted)

		if o.notifier != nil && len(result.New) > 0 {
			if err := o.notifier.Notify(ctx, c.Name, result.New); err != nil {
				logger.Error("notifying new postings", "error", err)
			}
		}
	}

	logger.Info("crawled company",
		"board", res.Board,
		"fetched", res.Fetched,
		"persisted", res.Persisted,
		"new", res.Inserted,
	)
	return res
}

func (o *Orchestrator) classifyPostings(logger *slog.Logger, c model.Company, postings []model.RawPosting, seenAt time.Time) ([]model.NormalizedRecord, map[classify.Stage]int) {
	scope := classify.NewScope(c.Config.ExtraKeywords)
	dropped := make(map[classify.Stage]int)

	var records []model.NormalizedRecord
	for _, p := range postings {
		role, stage := classify.Evaluate(normalize.Normalize(p), scope)
		if stage != classify.StageAccepted {
			dropped[stage]++
			o.metrics.PostingDropped(string(stage))
			logger.Debug("dropped posting", "external_id", p.ExternalID, "title", p.Title, "stage", stage)
			continue
		}
		records = append(records, toRecord(c, p, role, seenAt))
	}
	return records, dropped
}

func toRecord(c model.Company, p model.RawPosting, role model.RoleType, seenAt time.Time) model.NormalizedRecord {
	var location *string
	if loc := strings.TrimSpace(p.Location); loc != "" {
		location = &loc
	}
	return model.NormalizedRecord{
		CompanyID:  c.ID,
		Source:     c.Connector,
		ExternalID: p.ExternalID,
		Title:      p.Title,
		Location:   location,
		URL:        p.URL,
		RoleType:   role,
		Tags:       []string{model.TagInvestmentBanking},
		PostedAt:   model.PostedAtOf(p),
		LastSeenAt: seenAt,
		IsActive:   true,
		Raw:        p.Raw,
	}
}
