// Package store persists classified postings and serves them back for
// browsing. SQLite is the default backend; PostgreSQL is used when a
// database URL is configured.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/amishk599/ibwatch/internal/model"
)

// Store is everything the CLI needs from a backend.
type Store interface {
	model.Persister
	model.CompanyDirectory
	SyncCompanies(ctx context.Context, companies []model.Company) error
	ListJobs(ctx context.Context, filter JobFilter) ([]JobRow, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver string // "sqlite" or "postgres"
	Path   string // sqlite file
	URL    string // postgres connection string
}

// Open connects to the backend named by opts.Driver and ensures the schema.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return NewSQLiteStore(opts.Path)
	case DriverPostgres:
		return NewPostgresStore(ctx, opts.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// JobFilter narrows ListJobs. Zero values mean "no filter".
type JobFilter struct {
	Role      model.RoleType
	CompanyID string
	Query     string    // case-insensitive substring of title, location or company name
	Since     time.Time // first seen at or after
	Limit     int
}

// SinceDays returns the cutoff for a window of the last days days, or the
// zero time when days is not positive.
func SinceDays(days int, now time.Time) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// JobRow is one active record as served to readers, newest first.
type JobRow struct {
	CompanyID   string
	CompanyName string
	Source      string
	ExternalID  string
	Title       string
	Location    *string
	URL         string
	RoleType    model.RoleType
	PostedAt    *time.Time
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	IsActive    bool
}
