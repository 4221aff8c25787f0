// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package audit records administrative actions for accountability.

Every admin mutation (election lifecycle changes, CRUD on positions and
candidates, eligibility changes, CSV exports) appends one entry naming
the actor, the action, the affected record, and a salted hash of the
client IP. Failures to record are logged and never fail the request
that triggered them.

	audit.Record(db, audit.Entry{
		ActorID:     admin.ID,
		Action:      audit.ActionPublish,
		Description: "Published results for: " + election.Title,
		TargetKind:  "election",
		TargetID:    election.ID,
		IPHash:      auth.HashIP(middleware.ClientIP(r), cfg.AuditSalt),
	})
*/
package audit
