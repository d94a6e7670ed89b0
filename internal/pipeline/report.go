package pipeline

import (
	"errors"
	"time"

	"github.com/amishk599/ibwatch/internal/classify"
)

// ErrPartialFailure is returned by an isolated pass when at least one
// company failed. The Report still carries every company's outcome.
var ErrPartialFailure = errors.New("one or more companies failed")

// SkipReason names the configuration gap that kept a company from being crawled.
type SkipReason string

const (
	SkipUnsupportedConnector SkipReason = "unsupported_connector"
	SkipMissingBoard         SkipReason = "missing_board"
)

// CompanyResult is the outcome of one company within a pass.
type CompanyResult struct {
	CompanyID string
	Name      string
	Connector string
	Board     string

	Fetched   int
	Dropped   map[classify.Stage]int
	Persisted int
	Inserted  int

	Skipped SkipReason // empty when the company was crawled
	Err     error
}

// OK reports whether the company was crawled and persisted without error.
func (r CompanyResult) OK() bool {
	return r.Skipped == "" && r.Err == nil
}

// Report summarises a pass. Companies appear in directory order; in the
// sequential mode companies after a fatal error are absent.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Companies  []CompanyResult
}

func (r *Report) Succeeded() []string {
	return r.ids(func(c CompanyResult) bool { return c.OK() })
}

func (r *Report) Failed() []string {
	return r.ids(func(c CompanyResult) bool { return c.Err != nil })
}

func (r *Report) Skipped() []string {
	return r.ids(func(c CompanyResult) bool { return c.Skipped != "" })
}

// TotalFetched is the number of postings returned across all companies.
func (r *Report) TotalFetched() int {
	n := 0
	for _, c := range r.Companies {
		n += c.Fetched
	}
	return n
}

// TotalPersisted is the number of classified records upserted in the pass.
func (r *Report) TotalPersisted() int {
	n := 0
	for _, c := range r.Companies {
		n += c.Persisted
	}
	return n
}

// TotalInserted is the number of records seen for the first time.
func (r *Report) TotalInserted() int {
	n := 0
	for _, c := range r.Companies {
		n += c.Inserted
	}
	return n
}

func (r *Report) ids(keep func(CompanyResult) bool) []string {
	var out []string
	for _, c := range r.Companies {
		if keep(c) {
			out = append(out, c.CompanyID)
		}
	}
	return out
}
