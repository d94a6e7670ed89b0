package store

import (
	"fmt"
	"strings"
	"time"
)

// dialect captures the SQL differences between backends that the shared
// list query cares about.
type dialect struct {
	placeholder func(n int) string
	like        string
	trueLit     string
	timeArg     func(t time.Time) any
}

var sqliteDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("?%d", n) },
	like:        "LIKE",
	trueLit:     "1",
	timeArg:     func(t time.Time) any { return formatTime(t) },
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	like:        "ILIKE",
	trueLit:     "TRUE",
	timeArg:     func(t time.Time) any { return t },
}

const listJobsColumns = `j.company_id, COALESCE(c.name, ''), j.source, j.external_id, j.title, j.location,
		j.url, j.role_type, j.posted_at, j.first_seen_at, j.last_seen_at, j.is_active`

// buildListQuery renders the read query for f. Results are active records
// ordered by first_seen_at, newest first.
func buildListQuery(d dialect, f JobFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return d.placeholder(len(args))
	}

	where = append(where, "j.is_active = "+d.trueLit)
	if f.Role != "" {
		where = append(where, "j.role_type = "+arg(string(f.Role)))
	}
	if f.CompanyID != "" {
		where = append(where, "j.company_id = "+arg(f.CompanyID))
	}
	if !f.Since.IsZero() {
		where = append(where, "j.first_seen_at >= "+arg(d.timeArg(f.Since)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, fmt.Sprintf(
			`(j.title %[1]s %[2]s ESCAPE '\' OR j.location %[1]s %[2]s ESCAPE '\' OR c.name %[1]s %[2]s ESCAPE '\')`,
			d.like, p))
	}

	query := "SELECT " + listJobsColumns + `
		FROM jobs j
		LEFT JOIN companies c ON c.id = j.company_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY j.first_seen_at DESC, j.company_id, j.external_id`
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	return query, args
}

// escapeLike escapes the LIKE wildcards and the escape character itself.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
