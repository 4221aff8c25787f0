// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

Flags take precedence; environment variables fill in anything left
unset. A .env file in the working directory is loaded first when
present (via joho/godotenv).

Required settings:

  - DATABASE_URL (-d): connection string (postgres DSN or sqlite path)
  - AUDIT_SALT (--audit-salt): secret for audit-log IP hashing

Optional settings:

  - PORT (-p): server port (default: 8321)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
*/
package cliparse
