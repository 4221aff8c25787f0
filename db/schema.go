// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/campusvote/campusvote/auth"
)

// Open connects to the configured database backend.
// databaseType is "postgres" or "sqlite"; url is the DSN.
func Open(databaseType, url string) (*sql.DB, error) {
	switch databaseType {
	case "postgres":
		return sql.Open("postgres", url)
	case "sqlite":
		dsn := url
		if !strings.HasPrefix(dsn, "file:") {
			dsn = "file:" + dsn
		}
		// Foreign keys are off by default in SQLite; the vote ledger
		// depends on them.
		if strings.Contains(dsn, "?") {
			dsn += "&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		} else {
			dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
		return sql.Open("sqlite", dsn)
	default:
		return nil, fmt.Errorf("unknown database type %q", databaseType)
	}
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a uniqueness-constraint
// violation from either supported driver. The vote-casting path relies
// on this to fold the insert-time race signal into a domain error.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a referential-integrity
// failure. Vote rows restrict deletion of the records they reference;
// delete handlers translate this into a conflict response.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// EnsureAdminAccount creates a bootstrap admin account when no admin
// exists yet, returning its access token. Subsequent calls are no-ops.
func EnsureAdminAccount(db *sql.DB) (token string, created bool, err error) {
	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM student WHERE role = $1`, "admin").Scan(&count)
	if err != nil {
		return "", false, fmt.Errorf("failed to count admin accounts: %w", err)
	}
	if count > 0 {
		return "", false, nil
	}

	token, err = auth.GenerateAccessToken()
	if err != nil {
		return "", false, err
	}

	_, err = db.Exec(`
		INSERT INTO student (id, name, student_no, year_group, role, is_eligible, access_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, auth.NewID(), "Administrator", "ADMIN-0001", "year_7", "admin", false, token, time.Now())
	if err != nil {
		return "", false, fmt.Errorf("failed to create admin account: %w", err)
	}

	return token, true, nil
}

const schema = `
-- Students (account and profile attributes in one row)
CREATE TABLE IF NOT EXISTS student (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    student_no TEXT NOT NULL UNIQUE,
    year_group TEXT NOT NULL DEFAULT 'year_7',
    role TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'admin', 'observer')),
    is_eligible BOOLEAN NOT NULL DEFAULT TRUE,
    access_token TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_student_year_group ON student(year_group);
CREATE INDEX IF NOT EXISTS idx_student_access_token ON student(access_token);

-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_at TIMESTAMP NOT NULL,
    end_at TIMESTAMP NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'closed', 'archived')),
    eligible_year_groups TEXT NOT NULL DEFAULT 'year_7,year_8,year_9,year_10,year_11',
    results_published BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (end_at > start_at)
);

CREATE INDEX IF NOT EXISTS idx_election_status ON election(status);

-- Positions
CREATE TABLE IF NOT EXISTS position (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL DEFAULT 0,
    max_candidates INTEGER NOT NULL DEFAULT 10,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_position_election_id ON position(election_id);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    position_id TEXT NOT NULL REFERENCES position(id) ON DELETE CASCADE,
    student_id TEXT NOT NULL REFERENCES student(id) ON DELETE RESTRICT,
    manifesto TEXT NOT NULL DEFAULT '',
    is_approved BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (position_id, student_id)
);

CREATE INDEX IF NOT EXISTS idx_candidate_position_id ON candidate(position_id);

-- Votes. The UNIQUE (student_id, position_id) index is the authoritative
-- one-vote-per-student-per-position guarantee; application checks are
-- advisory. RESTRICT references keep the ledger intact when candidates
-- or students are deleted.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    student_id TEXT NOT NULL REFERENCES student(id) ON DELETE RESTRICT,
    position_id TEXT NOT NULL REFERENCES position(id) ON DELETE RESTRICT,
    candidate_id TEXT NOT NULL REFERENCES candidate(id) ON DELETE RESTRICT,
    cast_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (student_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_position_id ON vote(position_id);
CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);

-- Audit trail of admin actions
CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    actor_id TEXT,
    action TEXT NOT NULL,
    description TEXT NOT NULL,
    target_kind TEXT,
    target_id TEXT,
    ip_hash TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
`
