// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package handlers implements the HTTP request handlers.

# Handler Groups

  - StudentHandler: registration, voter roll, eligibility changes
  - ElectionHandler: election CRUD and lifecycle transitions
  - PositionHandler: position and candidate CRUD
  - VotingHandler: election browsing, candidate profiles, vote casting
  - ResultsHandler: published results, turnout analytics, CSV export
  - AuditHandler: admin action trail

Each handler holds the shared *sql.DB and config; the voting-related
handlers also hold a voting.Service, which owns the domain rules.
Handlers translate the service's typed errors into HTTP statuses
(open/duplicate conflicts are 409, eligibility is 403, bad candidate
selection is 400) and never expose raw driver errors.

# Identity

requireStudent and requireAdmin resolve the caller from the
X-Access-Token header and write the 401/403 response themselves, so
handlers read as a straight-line happy path.

# Auditing

Admin mutations append an audit entry via recordAudit; audit failures
are logged and do not fail the request.
*/
package handlers
