// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusvote/campusvote/auth"
	"github.com/campusvote/campusvote/cliparse"
	"github.com/campusvote/campusvote/db"
	"github.com/campusvote/campusvote/models"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. A single connection keeps the in-memory database alive for
// the duration of the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         8321,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		AuditSalt:    "test-audit-salt",
	}
}

// CreateTestStudent inserts a student account and returns it with its
// access token populated.
func CreateTestStudent(t *testing.T, conn *sql.DB, name, studentNo, yearGroup string) models.Student {
	t.Helper()
	return createAccount(t, conn, name, studentNo, yearGroup, models.RoleStudent, true)
}

// CreateTestAdmin inserts an admin account and returns it with its
// access token populated.
func CreateTestAdmin(t *testing.T, conn *sql.DB) models.Student {
	t.Helper()
	return createAccount(t, conn, "Test Admin", "ADMIN-T1", models.Year7, models.RoleAdmin, false)
}

func createAccount(t *testing.T, conn *sql.DB, name, studentNo, yearGroup, role string, eligible bool) models.Student {
	t.Helper()

	token, err := auth.GenerateAccessToken()
	if err != nil {
		t.Fatalf("Failed to generate access token: %v", err)
	}

	s := models.Student{
		ID:          auth.NewID(),
		Name:        name,
		StudentNo:   studentNo,
		YearGroup:   yearGroup,
		Role:        role,
		IsEligible:  eligible,
		AccessToken: token,
		CreatedAt:   time.Now(),
	}

	_, err = conn.Exec(`
		INSERT INTO student (id, name, student_no, year_group, role, is_eligible, access_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.ID, s.Name, s.StudentNo, s.YearGroup, s.Role, s.IsEligible, s.AccessToken, s.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test student: %v", err)
	}

	return s
}

// CreateTestElection inserts an election and returns its ID.
// status should be "draft", "active", "closed", or "archived"; the
// voting window is chosen to match (active spans now, draft lies in
// the future, closed/archived in the past).
func CreateTestElection(t *testing.T, conn *sql.DB, status, eligibleYearGroups string) string {
	t.Helper()

	now := time.Now()
	var startAt, endAt time.Time
	switch status {
	case models.StatusActive:
		startAt, endAt = now.Add(-time.Hour), now.Add(time.Hour)
	case models.StatusDraft:
		startAt, endAt = now.Add(24*time.Hour), now.Add(48*time.Hour)
	default: // closed, archived
		startAt, endAt = now.Add(-48*time.Hour), now.Add(-24*time.Hour)
	}

	if eligibleYearGroups == "" {
		eligibleYearGroups = "year_7,year_8,year_9,year_10,year_11"
	}

	electionID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO election (id, title, description, start_at, end_at, status, eligible_year_groups, results_published, created_at)
		VALUES ($1, 'Test Election', 'A test election', $2, $3, $4, $5, FALSE, $6)
	`, electionID, startAt, endAt, status, eligibleYearGroups, now)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID
}

// PublishTestResults flips the election's results-published flag.
func PublishTestResults(t *testing.T, conn *sql.DB, electionID string) {
	t.Helper()

	_, err := conn.Exec(`UPDATE election SET results_published = TRUE WHERE id = $1`, electionID)
	if err != nil {
		t.Fatalf("Failed to publish test results: %v", err)
	}
}

// CreateTestPosition adds a position to an election and returns its ID
func CreateTestPosition(t *testing.T, conn *sql.DB, electionID, title string) string {
	t.Helper()

	positionID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO position (id, election_id, title, description, display_order, max_candidates, created_at)
		VALUES ($1, $2, $3, '', 0, 10, $4)
	`, positionID, electionID, title, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return positionID
}

// CreateTestCandidate registers a student as an approved candidate for
// a position and returns the candidacy ID.
func CreateTestCandidate(t *testing.T, conn *sql.DB, positionID, studentID string) string {
	t.Helper()

	candidateID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO candidate (id, position_id, student_id, manifesto, is_approved, created_at)
		VALUES ($1, $2, $3, 'Test manifesto', TRUE, $4)
	`, candidateID, positionID, studentID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// CastTestVote records a vote directly, bypassing the domain checks.
func CastTestVote(t *testing.T, conn *sql.DB, studentID, positionID, candidateID string) string {
	t.Helper()

	voteID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO vote (id, student_id, position_id, candidate_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, studentID, positionID, candidateID, time.Now())
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return voteID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AuthHeader builds the token header for the given account.
func AuthHeader(s models.Student) map[string]string {
	return map[string]string{"X-Access-Token": s.AccessToken}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
