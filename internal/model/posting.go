package model

import (
	"context"
	"encoding/json"
	"time"
)

// RawPosting is one listing as returned by a job board, mapped onto a common
// shape. Every field may be empty; normalization substitutes defaults.
type RawPosting struct {
	ExternalID  string // stable id on the board
	Title       string
	Departments []string
	Offices     []string
	Location    string // primary location name
	Metadata    []MetadataField
	Content     string // free-form body, may contain markup
	URL         string
	UpdatedAt   *time.Time
	CreatedAt   *time.Time
	Raw         json.RawMessage // the board's document, verbatim
}

// MetadataField is a custom name/value pair attached to a posting.
type MetadataField struct {
	Name  string
	Value string
}

// RoleType is the employment category of an in-scope posting.
type RoleType string

const (
	RoleSeasonalAnalyst RoleType = "SA"
	RoleFullTime        RoleType = "FT"
)

// TagInvestmentBanking is the single domain tag carried by every record.
const TagInvestmentBanking = "IB"

// NormalizedRecord is the unit written by a Persister.
// (CompanyID, ExternalID) is unique across the store.
type NormalizedRecord struct {
	CompanyID  string
	Source     string // connector type tag
	ExternalID string
	Title      string
	Location   *string
	URL        string
	RoleType   RoleType
	Tags       []string
	PostedAt   *time.Time
	LastSeenAt time.Time
	IsActive   bool
	Raw        json.RawMessage
}

// PostedAtOf picks the best-effort posted time: updated, then created.
func PostedAtOf(p RawPosting) *time.Time {
	if p.UpdatedAt != nil {
		return p.UpdatedAt
	}
	return p.CreatedAt
}

// Connector fetches every posting on one board of a particular job-board type.
type Connector interface {
	Fetch(ctx context.Context, board string) ([]RawPosting, error)
}

// UpsertResult reports what a batch upsert did.
type UpsertResult struct {
	Inserted int
	Updated  int
	New      []NormalizedRecord // records whose key had never been stored
}

// Persister writes records keyed by (CompanyID, ExternalID). A second write
// for the same key overwrites everything except the first-seen time.
type Persister interface {
	Upsert(ctx context.Context, records []NormalizedRecord) (UpsertResult, error)
}

// Notifier announces postings seen for the first time.
type Notifier interface {
	Notify(ctx context.Context, companyName string, records []NormalizedRecord) error
}
