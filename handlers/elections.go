// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/campusvote/campusvote/audit"
	"github.com/campusvote/campusvote/auth"
	"github.com/campusvote/campusvote/cliparse"
	"github.com/campusvote/campusvote/db"
	"github.com/campusvote/campusvote/middleware"
	"github.com/campusvote/campusvote/models"
)

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// electionByID loads one election. Returns sql.ErrNoRows on miss.
func electionByID(conn *sql.DB, id string) (models.Election, error) {
	var e models.Election
	err := conn.QueryRow(`
		SELECT id, title, description, start_at, end_at, status,
		       eligible_year_groups, results_published, created_at
		FROM election
		WHERE id = $1
	`, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.StartAt, &e.EndAt,
		&e.Status, &e.EligibleYearGroups, &e.ResultsPublished, &e.CreatedAt,
	)
	return e, err
}

func validYearGroupSet(groups string) bool {
	e := models.Election{EligibleYearGroups: groups}
	list := e.EligibleYearGroupList()
	if len(list) == 0 {
		return false
	}
	for _, yg := range list {
		if !models.IsValidYearGroup(yg) {
			return false
		}
	}
	return true
}

// Create handles POST /admin/elections
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "start_at and end_at are required")
		return
	}
	if !req.EndAt.After(req.StartAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_at must be after start_at")
		return
	}
	if req.EligibleYearGroups == "" {
		// Default: every cohort may vote
		req.EligibleYearGroups = "year_7,year_8,year_9,year_10,year_11"
	}
	if !validYearGroupSet(req.EligibleYearGroups) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "eligible_year_groups contains an unknown cohort")
		return
	}

	election := models.Election{
		ID:                 auth.NewID(),
		Title:              req.Title,
		Description:        req.Description,
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
		Status:             models.StatusDraft,
		EligibleYearGroups: req.EligibleYearGroups,
		CreatedAt:          time.Now(),
	}

	_, err := h.db.Exec(`
		INSERT INTO election (id, title, description, start_at, end_at, status, eligible_year_groups, results_published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, election.ID, election.Title, election.Description, election.StartAt, election.EndAt,
		election.Status, election.EligibleYearGroups, false, election.CreatedAt)
	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionCreate,
		"Created election: "+election.Title, "election", election.ID)
	slog.Info("election created", "election_id", election.ID, "title", election.Title)

	middleware.JSONResponse(w, http.StatusCreated, election)
}

// List handles GET /admin/elections
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.db, w, r); !ok {
		return
	}

	rows, err := h.db.Query(`
		SELECT id, title, description, start_at, end_at, status,
		       eligible_year_groups, results_published, created_at
		FROM election
		ORDER BY start_at DESC
	`)
	if err != nil {
		slog.Error("failed to query elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.StartAt, &e.EndAt,
			&e.Status, &e.EligibleYearGroups, &e.ResultsPublished, &e.CreatedAt); err != nil {
			slog.Error("failed to scan election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		elections = append(elections, e)
	}

	middleware.JSONResponse(w, http.StatusOK, elections)
}

// Get handles GET /admin/elections/{id}
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.db, w, r); !ok {
		return
	}

	election, err := electionByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, election)
}

// Update handles PATCH /admin/elections/{id}
func (h *ElectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	election, err := electionByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		election.Title = *req.Title
	}
	if req.Description != nil {
		election.Description = *req.Description
	}
	if req.StartAt != nil {
		election.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		election.EndAt = *req.EndAt
	}
	if !election.EndAt.After(election.StartAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_at must be after start_at")
		return
	}
	if req.EligibleYearGroups != nil {
		if !validYearGroupSet(*req.EligibleYearGroups) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "eligible_year_groups contains an unknown cohort")
			return
		}
		election.EligibleYearGroups = *req.EligibleYearGroups
	}

	_, err = h.db.Exec(`
		UPDATE election
		SET title = $1, description = $2, start_at = $3, end_at = $4, eligible_year_groups = $5
		WHERE id = $6
	`, election.Title, election.Description, election.StartAt, election.EndAt,
		election.EligibleYearGroups, election.ID)
	if err != nil {
		slog.Error("failed to update election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update election")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionUpdate,
		"Updated election: "+election.Title, "election", election.ID)

	middleware.JSONResponse(w, http.StatusOK, election)
}

// Delete handles DELETE /admin/elections/{id}
// Positions cascade with the election, but any recorded vote blocks the
// delete so the historical tally survives.
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	election, err := electionByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.Exec(`DELETE FROM election WHERE id = $1`, election.ID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Election has recorded votes and cannot be deleted")
			return
		}
		slog.Error("failed to delete election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete election")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionDelete,
		"Deleted election: "+election.Title, "election", election.ID)
	slog.Info("election deleted", "election_id", election.ID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Election deleted"})
}

// Activate handles POST /admin/elections/{id}/activate (draft -> active)
func (h *ElectionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusActive, audit.ActionUpdate, "Activated election: ", models.StatusDraft)
}

// Close handles POST /admin/elections/{id}/close (active -> closed)
func (h *ElectionHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusClosed, audit.ActionClose, "Closed election: ", models.StatusActive)
}

// Archive handles POST /admin/elections/{id}/archive (closed -> archived)
func (h *ElectionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.StatusArchived, audit.ActionUpdate, "Archived election: ", models.StatusClosed)
}

func (h *ElectionHandler) transition(w http.ResponseWriter, r *http.Request, to, action, descPrefix string, allowedFrom ...string) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	election, err := electionByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	allowed := false
	for _, from := range allowedFrom {
		if election.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is "+election.Status+", cannot move to "+to)
		return
	}

	_, err = h.db.Exec(`UPDATE election SET status = $1 WHERE id = $2`, to, election.ID)
	if err != nil {
		slog.Error("failed to update election status", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update election")
		return
	}
	election.Status = to

	recordAudit(h.db, h.cfg, r, admin, action, descPrefix+election.Title, "election", election.ID)
	slog.Info("election status changed", "election_id", election.ID, "status", to)

	middleware.JSONResponse(w, http.StatusOK, election)
}

// PublishResults handles POST /admin/elections/{id}/publish-results
// Results stay suppressed for everyone until this flag is set.
func (h *ElectionHandler) PublishResults(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	election, err := electionByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if election.Status != models.StatusClosed && election.Status != models.StatusArchived {
		middleware.ErrorResponse(w, http.StatusConflict, "Results can only be published after the election closes")
		return
	}

	_, err = h.db.Exec(`UPDATE election SET results_published = TRUE WHERE id = $1`, election.ID)
	if err != nil {
		slog.Error("failed to publish results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish results")
		return
	}
	election.ResultsPublished = true

	recordAudit(h.db, h.cfg, r, admin, audit.ActionPublish,
		"Published results for: "+election.Title, "election", election.ID)
	slog.Info("results published", "election_id", election.ID)

	middleware.JSONResponse(w, http.StatusOK, election)
}
