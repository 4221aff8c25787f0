// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package main provides the entry point for the campusvote API server.

Campusvote is a school election platform: students register with their
school number, browse active elections, and cast one vote per position;
election officers manage the lifecycle, candidate roster, and results.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=campusvote.db AUDIT_SALT=... go run main.go

Or with flags:

	go run main.go -p 8321 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - AUDIT_SALT (--audit-salt): Secret for audit-log IP hashing

Optional settings:

  - PORT (-p): Server port (default: 8321)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"

On first start with an empty database, a bootstrap admin account is
created and its access token is logged once.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (students, elections, positions,
    voting, results, audit)
  - voting: Domain rules - eligibility, voting windows, vote casting,
    tallying, turnout
  - audit: Admin action trail
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: ID, access-token, and IP-hash generation
  - db: Backend selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
