package sqldb

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the differences between supported SQL engines
type Dialect struct {
	Name   string
	Driver string
	Schema string
	// Numbered uses $1..$n placeholders instead of '?'
	Numbered bool
}

var (
	SQLite = &Dialect{
		Name:   "sqlite",
		Driver: "sqlite",
		Schema: `CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	employee_name TEXT NOT NULL,
	employee_email TEXT NOT NULL,
	team_leader TEXT NOT NULL DEFAULT '',
	regional_head TEXT NOT NULL DEFAULT '',
	joining_date INTEGER NOT NULL DEFAULT 0,
	last_working_day INTEGER NOT NULL DEFAULT 0,
	submitted_at INTEGER NOT NULL,
	resignation_status TEXT NOT NULL,
	interview_status TEXT NOT NULL,
	interview_scheduled_at INTEGER,
	interview_notes TEXT NOT NULL DEFAULT '',
	leader_reply BOOLEAN,
	leader_notes TEXT NOT NULL DEFAULT '',
	regional_reply BOOLEAN,
	regional_notes TEXT NOT NULL DEFAULT '',
	it_reply BOOLEAN,
	assets_cleared BOOLEAN NOT NULL DEFAULT FALSE,
	medical_collected BOOLEAN NOT NULL DEFAULT FALSE,
	vendor_notified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_email ON submissions(employee_email);`,
	}

	Postgres = &Dialect{
		Name:     "postgres",
		Driver:   "postgres",
		Numbered: true,
		Schema: `CREATE TABLE IF NOT EXISTS submissions (
	id BIGSERIAL PRIMARY KEY,
	employee_name TEXT NOT NULL,
	employee_email TEXT NOT NULL,
	team_leader TEXT NOT NULL DEFAULT '',
	regional_head TEXT NOT NULL DEFAULT '',
	joining_date BIGINT NOT NULL DEFAULT 0,
	last_working_day BIGINT NOT NULL DEFAULT 0,
	submitted_at BIGINT NOT NULL,
	resignation_status TEXT NOT NULL,
	interview_status TEXT NOT NULL,
	interview_scheduled_at BIGINT,
	interview_notes TEXT NOT NULL DEFAULT '',
	leader_reply BOOLEAN,
	leader_notes TEXT NOT NULL DEFAULT '',
	regional_reply BOOLEAN,
	regional_notes TEXT NOT NULL DEFAULT '',
	it_reply BOOLEAN,
	assets_cleared BOOLEAN NOT NULL DEFAULT FALSE,
	medical_collected BOOLEAN NOT NULL DEFAULT FALSE,
	vendor_notified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_email ON submissions(employee_email);`,
	}
)

// DialectOf returns a dialect by name
func DialectOf(name string) (*Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return nil, fmt.Errorf("unsupported sql dialect: %v", name)
}

// Rebind rewrites '?' placeholders for dialects using numbered ones
func (d *Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var builder strings.Builder
	builder.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			builder.WriteByte(query[i])
			continue
		}
		n++
		builder.WriteByte('$')
		builder.WriteString(strconv.Itoa(n))
	}
	return builder.String()
}
