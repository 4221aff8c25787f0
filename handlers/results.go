// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campusvote/campusvote/audit"
	"github.com/campusvote/campusvote/cliparse"
	"github.com/campusvote/campusvote/middleware"
	"github.com/campusvote/campusvote/models"
	"github.com/campusvote/campusvote/voting"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc *voting.Service
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, svc: voting.NewService(db)}
}

// GetResults handles GET /elections/{id}/results
// Returns 403 until the election's results-published flag is set.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStudent(h.db, w, r); !ok {
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

	if !election.ResultsPublished {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results for this election have not been published")
		return
	}

	results, err := h.svc.ElectionResults(election)
	if err != nil {
		slog.Error("failed to compute results", "error", err, "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// Analytics handles GET /admin/elections/{id}/analytics
// Turnout by cohort plus full position results, published or not.
func (h *ResultsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
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

	turnout, err := h.svc.Turnout(election)
	if err != nil {
		slog.Error("failed to compute turnout", "error", err, "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute turnout")
		return
	}

	results, err := h.svc.ElectionResults(election)
	if err != nil {
		slog.Error("failed to compute results", "error", err, "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AnalyticsResponse{
		Election: election,
		Turnout:  turnout,
		Results:  results.Positions,
	})
}

// ExportCSV handles GET /admin/elections/{id}/results.csv
// Emits one row per (position, candidate) with votes and percentage.
func (h *ResultsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
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

	results, err := h.svc.ElectionResults(election)
	if err != nil {
		slog.Error("failed to compute results", "error", err, "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="results_`+election.ID+`.csv"`)

	// UTF-8 BOM for Excel compatibility
	w.Write([]byte("\ufeff"))

	writer := csv.NewWriter(w)
	writer.Write([]string{"Position", "Candidate", "Year Group", "Votes", "Percentage"})

	for _, pos := range results.Positions {
		for _, c := range pos.Candidates {
			writer.Write([]string{
				pos.Position.Title,
				c.Candidate.StudentName,
				c.Candidate.YearGroup,
				strconv.Itoa(c.Votes),
				strconv.FormatFloat(c.Percentage, 'f', 1, 64) + "%",
			})
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Error("failed to write CSV", "error", err, "election_id", election.ID)
	}

	recordAudit(h.db, h.cfg, r, admin, audit.ActionExport,
		"Exported results CSV for: "+election.Title, "election", election.ID)
}
