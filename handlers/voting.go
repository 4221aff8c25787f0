// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campusvote/campusvote/cliparse"
	"github.com/campusvote/campusvote/middleware"
	"github.com/campusvote/campusvote/models"
	"github.com/campusvote/campusvote/voting"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	svc *voting.Service
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, svc: voting.NewService(db)}
}

// ListElections handles GET /elections
// Students see active elections plus closed ones with published results.
func (h *VotingHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStudent(h.db, w, r); !ok {
		return
	}

	rows, err := h.db.Query(`
		SELECT id, title, description, start_at, end_at, status,
		       eligible_year_groups, results_published, created_at
		FROM election
		WHERE status = $1 OR (status IN ($2, $3) AND results_published = TRUE)
		ORDER BY start_at DESC
	`, models.StatusActive, models.StatusClosed, models.StatusArchived)
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

// GetElection handles GET /elections/{id}
// Returns the election with its positions, approved candidates, and the
// caller's per-position voting state.
func (h *VotingHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	student, ok := requireStudent(h.db, w, r)
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

	positions, err := h.svc.Positions(election.ID)
	if err != nil {
		slog.Error("failed to query positions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	votedIDs, err := h.svc.VotedPositionIDs(student.ID, election.ID)
	if err != nil {
		slog.Error("failed to query voted positions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	voted := make(map[string]bool, len(votedIDs))
	for _, id := range votedIDs {
		voted[id] = true
	}

	detail := models.ElectionDetail{
		Election:  election,
		Eligible:  voting.CanVote(student, election),
		Positions: []models.PositionDetail{},
	}

	for _, pos := range positions {
		candidates, err := approvedCandidates(h.db, pos.ID)
		if err != nil {
			slog.Error("failed to query candidates", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		detail.Positions = append(detail.Positions, models.PositionDetail{
			Position:   pos,
			Candidates: candidates,
			HasVoted:   voted[pos.ID],
		})
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// GetCandidate handles GET /candidates/{id}
// Only approved candidacies are visible to students.
func (h *VotingHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStudent(h.db, w, r); !ok {
		return
	}

	candidate, err := candidateByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows || (err == nil && !candidate.IsApproved) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		slog.Error("failed to query candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidate)
}

// CastVote handles POST /positions/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	student, ok := requireStudent(h.db, w, r)
	if !ok {
		return
	}

	positionID := r.PathValue("id")
	if positionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "position id is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	vote, err := h.svc.CastVote(student, positionID, req.CandidateID)
	if err != nil {
		switch {
		case errors.Is(err, voting.ErrPositionNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Position not found")
		case errors.Is(err, voting.ErrElectionNotOpen):
			middleware.ErrorResponse(w, http.StatusConflict, "Voting is not currently open for this election")
		case errors.Is(err, voting.ErrNotEligible):
			middleware.ErrorResponse(w, http.StatusForbidden, "You are not eligible to vote in this election")
		case errors.Is(err, voting.ErrCandidateNotApproved):
			middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate is not standing for this position")
		case errors.Is(err, voting.ErrAlreadyVoted):
			middleware.ErrorResponse(w, http.StatusConflict, "You have already voted for this position")
		default:
			slog.Error("failed to cast vote", "error", err, "position_id", positionID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		}
		return
	}

	slog.Info("vote cast", "position_id", positionID, "vote_id", vote.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:  vote.ID,
		Message: "Your vote has been recorded",
	})
}

// MyVotes handles GET /elections/{id}/my-votes
// Reports the caller's voting progress across the election's positions.
func (h *VotingHandler) MyVotes(w http.ResponseWriter, r *http.Request) {
	student, ok := requireStudent(h.db, w, r)
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

	var total int
	err = h.db.QueryRow(`SELECT COUNT(*) FROM position WHERE election_id = $1`, election.ID).Scan(&total)
	if err != nil {
		slog.Error("failed to count positions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	votedIDs, err := h.svc.VotedPositionIDs(student.ID, election.ID)
	if err != nil {
		slog.Error("failed to query voted positions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyVotesResponse{
		ElectionID:     election.ID,
		TotalPositions: total,
		VotedPositions: votedIDs,
		Complete:       total > 0 && len(votedIDs) >= total,
	})
}

// approvedCandidates lists a position's approved candidates with their
// student names, ordered by name for stable display.
func approvedCandidates(conn *sql.DB, positionID string) ([]models.Candidate, error) {
	rows, err := conn.Query(`
		SELECT c.id, c.position_id, c.student_id, s.name, s.year_group,
		       c.manifesto, c.is_approved, c.created_at
		FROM candidate c
		JOIN student s ON s.id = c.student_id
		WHERE c.position_id = $1 AND c.is_approved = TRUE
		ORDER BY s.name
	`, positionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.PositionID, &c.StudentID, &c.StudentName,
			&c.YearGroup, &c.Manifesto, &c.IsApproved, &c.CreatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
