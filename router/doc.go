// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package router defines HTTP routes for the campusvote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Registration and identity (identified by X-Access-Token):

	POST /students    - Register and receive an access token
	GET  /students/me - Current account

Election browsing and voting (student):

	GET  /elections                - Active and published elections
	GET  /elections/{id}           - Election with positions and candidates
	GET  /elections/{id}/my-votes  - Voting progress
	GET  /elections/{id}/results   - Published results only
	GET  /candidates/{id}          - Candidate profile and manifesto
	POST /positions/{id}/votes     - Cast a vote

Election administration (admin):

	POST   /admin/elections                       - Create (draft)
	GET    /admin/elections                       - All elections
	GET    /admin/elections/{id}                  - Election detail
	PATCH  /admin/elections/{id}                  - Update fields
	DELETE /admin/elections/{id}                  - Delete (409 if voted)
	POST   /admin/elections/{id}/activate         - draft -> active
	POST   /admin/elections/{id}/close            - active -> closed
	POST   /admin/elections/{id}/archive          - closed -> archived
	POST   /admin/elections/{id}/publish-results  - Make results visible

Positions and candidates (admin):

	POST   /admin/elections/{id}/positions  - Add position
	PATCH  /admin/positions/{id}            - Update position
	DELETE /admin/positions/{id}            - Delete (409 if voted)
	POST   /admin/positions/{id}/candidates - Add candidate
	PATCH  /admin/candidates/{id}           - Update manifesto/approval
	DELETE /admin/candidates/{id}           - Delete (409 if voted)

Voter roll and analytics (admin):

	GET   /admin/students                     - Roll with filters
	PATCH /admin/students/{id}/eligibility    - Suspend/restore voting
	GET   /admin/elections/{id}/analytics     - Turnout and full results
	GET   /admin/elections/{id}/results.csv   - CSV export
	GET   /admin/audit-logs                   - Admin action trail

# Handler Initialization

The router creates handler instances with dependency injection:

	studentHandler := handlers.NewStudentHandler(db, cfg)
	electionHandler := handlers.NewElectionHandler(db, cfg)
	...

All handlers receive the database connection and configuration.
*/
package router
