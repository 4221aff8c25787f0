// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package db handles database connection, schema creation, and driver
error classification.

# Connecting

Open selects the driver from configuration:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

PostgreSQL (lib/pq) is the production backend; SQLite (modernc.org/sqlite)
serves development and the test suite. For SQLite, Open enables foreign
keys and a busy timeout through DSN pragmas.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - student: account plus profile (cohort, role, eligibility, token)
  - election: metadata, voting window, lifecycle status
  - position: electable roles per election
  - candidate: students standing for a position
  - vote: the append-only ledger, UNIQUE (student_id, position_id)
  - audit_log: admin action trail

# Relationships

	election 1──* position
	position 1──* candidate
	vote *──1 student, position, candidate (ON DELETE RESTRICT)

Positions and candidates cascade with their parents; vote references
RESTRICT deletion so the historical tally cannot be destroyed silently.

# Error Classification

IsUniqueViolation and IsForeignKeyViolation recognize constraint errors
from both drivers so callers can translate them into domain outcomes
instead of surfacing raw driver faults.

# Bootstrap

EnsureAdminAccount creates a first admin account (and logs its token at
startup) when the student table holds no admin yet.
*/
package db
