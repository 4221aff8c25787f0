// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/campusvote/campusvote/auth"
)

// Audit action constants
const (
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionPublish     = "publish"
	ActionClose       = "close"
	ActionExport      = "export"
	ActionEligibility = "eligibility"
)

// Entry is one recorded admin action.
type Entry struct {
	ID          string    `json:"id"`
	ActorID     string    `json:"actor_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	TargetKind  string    `json:"target_kind,omitempty"`
	TargetID    string    `json:"target_id,omitempty"`
	IPHash      string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record appends one entry to the audit trail.
func Record(db *sql.DB, e Entry) error {
	_, err := db.Exec(`
		INSERT INTO audit_log (id, actor_id, action, description, target_kind, target_id, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, auth.NewID(), e.ActorID, e.Action, e.Description, e.TargetKind, e.TargetID, e.IPHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first, optionally filtered
// by action.
func Recent(db *sql.DB, action string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, actor_id, action, description, target_kind, target_id, ip_hash, created_at
		FROM audit_log
	`
	args := []interface{}{}
	if action != "" {
		query += ` WHERE action = $1`
		args = append(args, action)
		query += ` ORDER BY created_at DESC LIMIT $2`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
	}
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Description,
			&e.TargetKind, &e.TargetID, &e.IPHash, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
