package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/ibwatch/internal/model"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS companies (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	connector TEXT NOT NULL,
	config    TEXT NOT NULL DEFAULT '{}',
	active    INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS jobs (
	company_id    TEXT NOT NULL,
	source        TEXT NOT NULL,
	external_id   TEXT NOT NULL,
	title         TEXT NOT NULL,
	location      TEXT,
	url           TEXT NOT NULL,
	role_type     TEXT NOT NULL,
	tags          TEXT NOT NULL DEFAULT '[]',
	posted_at     TEXT,
	first_seen_at TEXT NOT NULL,
	last_seen_at  TEXT NOT NULL,
	is_active     INTEGER NOT NULL DEFAULT 1,
	raw           TEXT,
	UNIQUE (company_id, external_id)
);
CREATE INDEX IF NOT EXISTS jobs_first_seen_idx ON jobs (first_seen_at DESC);`

// SQLiteStore keeps companies and classified jobs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases intact.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

const sqliteUpsertJob = `
INSERT INTO jobs (company_id, source, external_id, title, location, url, role_type,
	tags, posted_at, first_seen_at, last_seen_at, is_active, raw)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (company_id, external_id) DO UPDATE SET
	source       = excluded.source,
	title        = excluded.title,
	location     = excluded.location,
	url          = excluded.url,
	role_type    = excluded.role_type,
	tags         = excluded.tags,
	posted_at    = excluded.posted_at,
	last_seen_at = excluded.last_seen_at,
	is_active    = excluded.is_active,
	raw          = excluded.raw`

// Upsert writes records in one transaction. New keys are inserted with
// first_seen_at = LastSeenAt; existing keys are overwritten except for
// first_seen_at.
func (s *SQLiteStore) Upsert(ctx context.Context, records []model.NormalizedRecord) (model.UpsertResult, error) {
	var result model.UpsertResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	exists, err := tx.PrepareContext(ctx, "SELECT 1 FROM jobs WHERE company_id = ? AND external_id = ?")
	if err != nil {
		return result, fmt.Errorf("preparing existence check: %w", err)
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx, sqliteUpsertJob)
	if err != nil {
		return result, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	for _, r := range records {
		var one int
		err := exists.QueryRowContext(ctx, r.CompanyID, r.ExternalID).Scan(&one)
		isNew := errors.Is(err, sql.ErrNoRows)
		if err != nil && !isNew {
			return model.UpsertResult{}, fmt.Errorf("checking job %s/%s: %w", r.CompanyID, r.ExternalID, err)
		}

		tags, err := json.Marshal(r.Tags)
		if err != nil {
			return model.UpsertResult{}, fmt.Errorf("encoding tags for %s/%s: %w", r.CompanyID, r.ExternalID, err)
		}

		seen := formatTime(r.LastSeenAt)
		_, err = upsert.ExecContext(ctx,
			r.CompanyID, r.Source, r.ExternalID, r.Title, r.Location, r.URL, string(r.RoleType),
			string(tags), formatTimePtr(r.PostedAt), seen, seen, r.IsActive, rawText(r.Raw),
		)
		if err != nil {
			return model.UpsertResult{}, fmt.Errorf("upserting job %s/%s: %w", r.CompanyID, r.ExternalID, err)
		}

		if isNew {
			result.Inserted++
			result.New = append(result.New, r)
		} else {
			result.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return model.UpsertResult{}, fmt.Errorf("committing upsert: %w", err)
	}
	return result, nil
}

// ActiveCompanies returns the companies flagged active, ordered by name.
func (s *SQLiteStore) ActiveCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, connector, config FROM companies WHERE active = 1 ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c := model.Company{Active: true}
		var cfg string
		if err := rows.Scan(&c.ID, &c.Name, &c.Connector, &cfg); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		if err := json.Unmarshal([]byte(cfg), &c.Config); err != nil {
			return nil, fmt.Errorf("decoding config for company %s: %w", c.ID, err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// SyncCompanies inserts or replaces each company row.
func (s *SQLiteStore) SyncCompanies(ctx context.Context, companies []model.Company) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning company sync: %w", err)
	}
	defer tx.Rollback()

	for _, c := range companies {
		cfg, err := json.Marshal(c.Config)
		if err != nil {
			return fmt.Errorf("encoding config for company %s: %w", c.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO companies (id, name, connector, config, active) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, connector = excluded.connector,
				config = excluded.config, active = excluded.active`,
			c.ID, c.Name, c.Connector, string(cfg), c.Active,
		)
		if err != nil {
			return fmt.Errorf("syncing company %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// ListJobs returns active jobs matching f, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context, f JobFilter) ([]JobRow, error) {
	query, args := buildListQuery(sqliteDialect, f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []JobRow
	for rows.Next() {
		var (
			j                   JobRow
			role                string
			location, postedAt  sql.NullString
			firstSeen, lastSeen string
		)
		if err := rows.Scan(&j.CompanyID, &j.CompanyName, &j.Source, &j.ExternalID, &j.Title, &location,
			&j.URL, &role, &postedAt, &firstSeen, &lastSeen, &j.IsActive); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		j.RoleType = model.RoleType(role)
		if location.Valid {
			j.Location = &location.String
		}
		if j.PostedAt, err = parseTimePtr(postedAt); err != nil {
			return nil, err
		}
		if j.FirstSeenAt, err = parseTime(firstSeen); err != nil {
			return nil, err
		}
		if j.LastSeenAt, err = parseTime(lastSeen); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func rawText(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
