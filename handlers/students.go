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

type StudentHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewStudentHandler(db *sql.DB, cfg cliparse.Config) *StudentHandler {
	return &StudentHandler{db: db, cfg: cfg}
}

// Register handles POST /students
// Creates the account and its profile attributes as a single row, so
// there is no separate profile-creation step to forget or race.
func (h *StudentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterStudentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.StudentNo == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student_no is required")
		return
	}
	if !models.IsValidYearGroup(req.YearGroup) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "year_group must be one of year_7..year_11")
		return
	}

	token, err := auth.GenerateAccessToken()
	if err != nil {
		slog.Error("failed to generate access token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	studentID := auth.NewID()
	_, err = h.db.Exec(`
		INSERT INTO student (id, name, student_no, year_group, role, is_eligible, access_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, studentID, req.Name, req.StudentNo, req.YearGroup, models.RoleStudent, true, token, time.Now())

	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "student_no already registered")
			return
		}
		slog.Error("failed to insert student", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("student registered", "student_id", studentID, "year_group", req.YearGroup)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterStudentResponse{
		StudentID:   studentID,
		AccessToken: token,
	})
}

// Me handles GET /students/me
func (h *StudentHandler) Me(w http.ResponseWriter, r *http.Request) {
	student, ok := requireStudent(h.db, w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, student)
}

// List handles GET /admin/students
// Supports ?year_group= and ?eligible=true/false filters.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.db, w, r); !ok {
		return
	}

	query := `
		SELECT id, name, student_no, year_group, role, is_eligible, access_token, created_at
		FROM student
	`
	where := ""
	args := []interface{}{}

	if yg := r.URL.Query().Get("year_group"); yg != "" {
		where = " WHERE year_group = $1"
		args = append(args, yg)
	}
	if el := r.URL.Query().Get("eligible"); el == "true" || el == "false" {
		if where == "" {
			where = " WHERE is_eligible = $1"
		} else {
			where += " AND is_eligible = $2"
		}
		args = append(args, el == "true")
	}
	query += where + " ORDER BY name"

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query students", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.StudentNo, &s.YearGroup,
			&s.Role, &s.IsEligible, &s.AccessToken, &s.CreatedAt); err != nil {
			slog.Error("failed to scan student", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		students = append(students, s)
	}

	middleware.JSONResponse(w, http.StatusOK, students)
}

// SetEligibility handles PATCH /admin/students/{id}/eligibility
func (h *StudentHandler) SetEligibility(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(h.db, w, r)
	if !ok {
		return
	}

	studentID := r.PathValue("id")
	if studentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "student id is required")
		return
	}

	var req models.SetEligibilityRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.IsEligible == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "is_eligible is required")
		return
	}

	result, err := h.db.Exec(`
		UPDATE student SET is_eligible = $1 WHERE id = $2
	`, *req.IsEligible, studentID)
	if err != nil {
		slog.Error("failed to update eligibility", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update eligibility")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Student not found")
		return
	}

	desc := "Revoked voting eligibility"
	if *req.IsEligible {
		desc = "Granted voting eligibility"
	}
	h.recordAudit(r, admin, audit.ActionEligibility, desc, "student", studentID)

	slog.Info("eligibility updated", "student_id", studentID, "eligible", *req.IsEligible)

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"student_id":  studentID,
		"is_eligible": *req.IsEligible,
	})
}

// recordAudit appends an audit entry; failures are logged, never fatal.
func (h *StudentHandler) recordAudit(r *http.Request, actor models.Student, action, description, kind, targetID string) {
	recordAudit(h.db, h.cfg, r, actor, action, description, kind, targetID)
}

func recordAudit(conn *sql.DB, cfg cliparse.Config, r *http.Request, actor models.Student, action, description, kind, targetID string) {
	err := audit.Record(conn, audit.Entry{
		ActorID:     actor.ID,
		Action:      action,
		Description: description,
		TargetKind:  kind,
		TargetID:    targetID,
		IPHash:      auth.HashIP(middleware.ClientIP(r), cfg.AuditSalt),
	})
	if err != nil {
		slog.Warn("failed to record audit entry", "error", err, "action", action)
	}
}
