// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/campusvote/campusvote/middleware"
	"github.com/campusvote/campusvote/models"
)

// studentByToken resolves the account behind an access token.
// Returns sql.ErrNoRows when the token matches nothing.
func studentByToken(db *sql.DB, token string) (models.Student, error) {
	var s models.Student
	err := db.QueryRow(`
		SELECT id, name, student_no, year_group, role, is_eligible, access_token, created_at
		FROM student
		WHERE access_token = $1
	`, token).Scan(
		&s.ID, &s.Name, &s.StudentNo, &s.YearGroup,
		&s.Role, &s.IsEligible, &s.AccessToken, &s.CreatedAt,
	)
	return s, err
}

// requireStudent resolves the caller from the X-Access-Token header,
// writing the error response itself when identity is missing or bad.
func requireStudent(db *sql.DB, w http.ResponseWriter, r *http.Request) (models.Student, bool) {
	token := r.Header.Get("X-Access-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Access-Token header required")
		return models.Student{}, false
	}

	student, err := studentByToken(db, token)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid access token")
		return models.Student{}, false
	}
	if err != nil {
		slog.Error("failed to resolve access token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Student{}, false
	}

	return student, true
}

// requireAdmin is requireStudent plus a role check.
func requireAdmin(db *sql.DB, w http.ResponseWriter, r *http.Request) (models.Student, bool) {
	student, ok := requireStudent(db, w, r)
	if !ok {
		return models.Student{}, false
	}
	if student.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, "Admin access required")
		return models.Student{}, false
	}
	return student, true
}
