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

type PositionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPositionHandler(db *sql.DB, cfg cliparse.Config) *PositionHandler {
	return &PositionHandler{db: db, cfg: cfg}
}

func positionByID(conn *sql.DB, id string) (models.Position, error) {
	var p models.Position
	err := conn.QueryRow(`
		SELECT id, election_id, title, description, display_order, max_candidates, created_at
		FROM position
		WHERE id = $1
	`, id).Scan(&p.ID, &p.ElectionID, &p.Title, &p.Description,
		&p.DisplayOrder, &p.MaxCandidates, &p.CreatedAt)
	return p, err
}

// Create handles POST /admin/elections/{id}/positions
func (h *PositionHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req models.CreatePositionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.MaxCandidates <= 0 {
		req.MaxCandidates = 10
	}

	position := models.Position{
		ID:            auth.NewID(),
		ElectionID:    election.ID,
		Title:         req.Title,
		Description:   req.Description,
		DisplayOrder:  req.DisplayOrder,
		MaxCandidates: req.MaxCandidates,
		CreatedAt:     time.Now(),
	}

	_, err = h.db.Exec(`
		INSERT INTO position (id, election_id, title, description, display_order, max_candidates, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, position.ID, position.ElectionID, position.Title, position.Description,
		position.DisplayOrder, position.MaxCandidates, position.CreatedAt)
	if err != nil {
		slog.Error("failed to insert position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create position")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionCreate,
		"Created position: "+position.Title, "position", position.ID)
	slog.Info("position created", "position_id", position.ID, "election_id", election.ID)

	middleware.JSONResponse(w, http.StatusCreated, position)
}

// Update handles PATCH /admin/positions/{id}
func (h *PositionHandler) Update(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	position, err := positionByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Position not found")
		return
	}
	if err != nil {
		slog.Error("failed to query position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.UpdatePositionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		position.Title = *req.Title
	}
	if req.Description != nil {
		position.Description = *req.Description
	}
	if req.DisplayOrder != nil {
		position.DisplayOrder = *req.DisplayOrder
	}
	if req.MaxCandidates != nil {
		if *req.MaxCandidates <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "max_candidates must be positive")
			return
		}
		position.MaxCandidates = *req.MaxCandidates
	}

	_, err = h.db.Exec(`
		UPDATE position
		SET title = $1, description = $2, display_order = $3, max_candidates = $4
		WHERE id = $5
	`, position.Title, position.Description, position.DisplayOrder, position.MaxCandidates, position.ID)
	if err != nil {
		slog.Error("failed to update position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update position")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionUpdate,
		"Updated position: "+position.Title, "position", position.ID)

	middleware.JSONResponse(w, http.StatusOK, position)
}

// Delete handles DELETE /admin/positions/{id}
func (h *PositionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	position, err := positionByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Position not found")
		return
	}
	if err != nil {
		slog.Error("failed to query position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.Exec(`DELETE FROM position WHERE id = $1`, position.ID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Position has recorded votes and cannot be deleted")
			return
		}
		slog.Error("failed to delete position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete position")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionDelete,
		"Deleted position: "+position.Title, "position", position.ID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Position deleted"})
}

// AddCandidate handles POST /admin/positions/{id}/candidates
func (h *PositionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	position, err := positionByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Position not found")
		return
	}
	if err != nil {
		slog.Error("failed to query position", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.StudentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_id is required")
		return
	}
	if len(req.Manifesto) > 2000 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "manifesto must be 2000 characters or fewer")
		return
	}

	var studentName, yearGroup string
	err = h.db.QueryRow(`SELECT name, year_group FROM student WHERE id = $1`, req.StudentID).
		Scan(&studentName, &yearGroup)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		slog.Error("failed to query student", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var count int
	err = h.db.QueryRow(`SELECT COUNT(*) FROM candidate WHERE position_id = $1`, position.ID).Scan(&count)
	if err != nil {
		slog.Error("failed to count candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count >= position.MaxCandidates {
		middleware.ErrorResponse(w, http.StatusConflict, "Position already has the maximum number of candidates")
		return
	}

	candidate := models.Candidate{
		ID:          auth.NewID(),
		PositionID:  position.ID,
		StudentID:   req.StudentID,
		StudentName: studentName,
		YearGroup:   yearGroup,
		Manifesto:   req.Manifesto,
		IsApproved:  true,
		CreatedAt:   time.Now(),
	}

	_, err = h.db.Exec(`
		INSERT INTO candidate (id, position_id, student_id, manifesto, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, candidate.ID, candidate.PositionID, candidate.StudentID,
		candidate.Manifesto, candidate.IsApproved, candidate.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Student is already a candidate for this position")
			return
		}
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionCreate,
		"Added candidate "+studentName+" for: "+position.Title, "candidate", candidate.ID)
	slog.Info("candidate added", "candidate_id", candidate.ID, "position_id", position.ID)

	middleware.JSONResponse(w, http.StatusCreated, candidate)
}

// UpdateCandidate handles PATCH /admin/candidates/{id}
// Covers manifesto edits and approval changes.
func (h *PositionHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	candidateID := r.PathValue("id")
	candidate, err := candidateByID(h.db, candidateID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		slog.Error("failed to query candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.UpdateCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Manifesto != nil {
		if len(*req.Manifesto) > 2000 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "manifesto must be 2000 characters or fewer")
			return
		}
		candidate.Manifesto = *req.Manifesto
	}
	if req.IsApproved != nil {
		candidate.IsApproved = *req.IsApproved
	}

	_, err = h.db.Exec(`
		UPDATE candidate SET manifesto = $1, is_approved = $2 WHERE id = $3
	`, candidate.Manifesto, candidate.IsApproved, candidate.ID)
	if err != nil {
		slog.Error("failed to update candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update candidate")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionUpdate,
		"Updated candidate: "+candidate.StudentName, "candidate", candidate.ID)

	middleware.JSONResponse(w, http.StatusOK, candidate)
}

// DeleteCandidate handles DELETE /admin/candidates/{id}
// A candidate with recorded votes cannot be removed.
func (h *PositionHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	candidate, err := candidateByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		slog.Error("failed to query candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.Exec(`DELETE FROM candidate WHERE id = $1`, candidate.ID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Candidate has recorded votes and cannot be deleted")
			return
		}
		slog.Error("failed to delete candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionDelete,
		"Deleted candidate: "+candidate.StudentName, "candidate", candidate.ID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "Candidate deleted"})
}

func candidateByID(conn *sql.DB, id string) (models.Candidate, error) {
	var c models.Candidate
	err := conn.QueryRow(`
		SELECT c.id, c.position_id, c.student_id, s.name, s.year_group,
		       c.manifesto, c.is_approved, c.created_at
		FROM candidate c
		JOIN student s ON s.id = c.student_id
		WHERE c.id = $1
	`, id).Scan(&c.ID, &c.PositionID, &c.StudentID, &c.StudentName,
		&c.YearGroup, &c.Manifesto, &c.IsApproved, &c.CreatedAt)
	return c, err
}
