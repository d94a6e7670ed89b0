package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/ibwatch/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS companies (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	connector TEXT NOT NULL,
	config    JSONB NOT NULL DEFAULT '{}'::jsonb,
	active    BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE TABLE IF NOT EXISTS jobs (
	company_id    TEXT NOT NULL,
	source        TEXT NOT NULL,
	external_id   TEXT NOT NULL,
	title         TEXT NOT NULL,
	location      TEXT,
	url           TEXT NOT NULL,
	role_type     TEXT NOT NULL,
	tags          TEXT[] NOT NULL DEFAULT '{}',
	posted_at     TIMESTAMPTZ,
	first_seen_at TIMESTAMPTZ NOT NULL,
	last_seen_at  TIMESTAMPTZ NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	raw           JSONB,
	UNIQUE (company_id, external_id)
);
CREATE INDEX IF NOT EXISTS jobs_first_seen_idx ON jobs (first_seen_at DESC);`

// The xmax system column is 0 only for rows created by this statement.
const postgresUpsertJob = `
INSERT INTO jobs (company_id, source, external_id, title, location, url, role_type,
	tags, posted_at, first_seen_at, last_seen_at, is_active, raw)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, $11, $12)
ON CONFLICT (company_id, external_id) DO UPDATE SET
	source       = EXCLUDED.source,
	title        = EXCLUDED.title,
	location     = EXCLUDED.location,
	url          = EXCLUDED.url,
	role_type    = EXCLUDED.role_type,
	tags         = EXCLUDED.tags,
	posted_at    = EXCLUDED.posted_at,
	last_seen_at = EXCLUDED.last_seen_at,
	is_active    = EXCLUDED.is_active,
	raw          = EXCLUDED.raw
RETURNING (xmax = 0) AS inserted`

// PostgresStore keeps companies and classified jobs in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to databaseURL, verifies the connection and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Upsert writes records as one batch inside a transaction. first_seen_at is
// only ever set by the insert branch.
func (s *PostgresStore) Upsert(ctx context.Context, records []model.NormalizedRecord) (model.UpsertResult, error) {
	var result model.UpsertResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(postgresUpsertJob,
			r.CompanyID, r.Source, r.ExternalID, r.Title, r.Location, r.URL, string(r.RoleType),
			r.Tags, r.PostedAt, r.LastSeenAt, r.IsActive, rawJSON(r.Raw),
		)
	}

	br := tx.SendBatch(ctx, batch)
	for _, r := range records {
		var inserted bool
		if err := br.QueryRow().Scan(&inserted); err != nil {
			br.Close()
			return model.UpsertResult{}, fmt.Errorf("upserting job %s/%s: %w", r.CompanyID, r.ExternalID, err)
		}
		if inserted {
			result.Inserted++
			result.New = append(result.New, r)
		} else {
			result.Updated++
		}
	}
	if err := br.Close(); err != nil {
		return model.UpsertResult{}, fmt.Errorf("closing upsert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.UpsertResult{}, fmt.Errorf("committing upsert: %w", err)
	}
	return result, nil
}

// ActiveCompanies returns the companies flagged active, ordered by name.
func (s *PostgresStore) ActiveCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, connector, config FROM companies WHERE active = TRUE ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c := model.Company{Active: true}
		var cfg []byte
		if err := rows.Scan(&c.ID, &c.Name, &c.Connector, &cfg); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		if err := json.Unmarshal(cfg, &c.Config); err != nil {
			return nil, fmt.Errorf("decoding config for company %s: %w", c.ID, err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// SyncCompanies inserts or replaces each company row.
func (s *PostgresStore) SyncCompanies(ctx context.Context, companies []model.Company) error {
	batch := &pgx.Batch{}
	for _, c := range companies {
		cfg, err := json.Marshal(c.Config)
		if err != nil {
			return fmt.Errorf("encoding config for company %s: %w", c.ID, err)
		}
		batch.Queue(`
			INSERT INTO companies (id, name, connector, config, active) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, connector = EXCLUDED.connector,
				config = EXCLUDED.config, active = EXCLUDED.active`,
			c.ID, c.Name, c.Connector, cfg, c.Active,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("syncing companies: %w", err)
	}
	return nil
}

// ListJobs returns active jobs matching f, newest first.
func (s *PostgresStore) ListJobs(ctx context.Context, f JobFilter) ([]JobRow, error) {
	query, args := buildListQuery(postgresDialect, f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []JobRow
	for rows.Next() {
		var (
			j    JobRow
			role string
		)
		if err := rows.Scan(&j.CompanyID, &j.CompanyName, &j.Source, &j.ExternalID, &j.Title, &j.Location,
			&j.URL, &role, &j.PostedAt, &j.FirstSeenAt, &j.LastSeenAt, &j.IsActive); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		j.RoleType = model.RoleType(role)
		out = append(out, j)
	}
	return out, rows.Err()
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func rawJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
