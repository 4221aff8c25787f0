// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package voting

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/campusvote/campusvote/auth"
	"github.com/campusvote/campusvote/db"
	"github.com/campusvote/campusvote/models"
)

// Domain errors surfaced to callers as typed outcomes.
var (
	ErrPositionNotFound     = errors.New("position not found")
	ErrElectionNotOpen      = errors.New("voting is not open for this election")
	ErrNotEligible          = errors.New("student is not eligible to vote in this election")
	ErrCandidateNotApproved = errors.New("candidate is not approved for this position")
	ErrAlreadyVoted         = errors.New("student has already voted for this position")
)

// Service implements the vote-casting, tally, and turnout operations
// over the SQL store.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// CanVote reports whether the student may vote in the election:
// the eligibility flag must be set and the student's cohort must be in
// the election's eligible set. Pure; reads only its two arguments.
func CanVote(student models.Student, election models.Election) bool {
	if !student.IsEligible {
		return false
	}
	return slices.Contains(election.EligibleYearGroupList(), student.YearGroup)
}

// IsVotingOpen reports whether votes may be cast right now: the
// election must be active and now must fall inside [start, end].
// A draft election inside its window is still closed.
func IsVotingOpen(election models.Election, now time.Time) bool {
	if election.Status != models.StatusActive {
		return false
	}
	return !now.Before(election.StartAt) && !now.After(election.EndAt)
}

// CastVote records exactly one vote for the student on the position.
//
// Preconditions are checked in order, first failure wins:
//  1. the position's election is open for voting (ErrElectionNotOpen)
//  2. the student is eligible (ErrNotEligible)
//  3. the candidate belongs to the position and is approved
//     (ErrCandidateNotApproved)
//  4. no vote exists yet for (student, position) (ErrAlreadyVoted)
//
// Check 4 is advisory only. Two concurrent casts can both pass it; the
// UNIQUE (student_id, position_id) index decides the race at insert
// time, and the resulting constraint violation is folded back into
// ErrAlreadyVoted rather than surfacing as an infrastructure fault.
func (s *Service) CastVote(student models.Student, positionID, candidateID string) (models.Vote, error) {
	election, err := s.electionForPosition(positionID)
	if err != nil {
		return models.Vote{}, err
	}

	if !IsVotingOpen(election, time.Now()) {
		return models.Vote{}, ErrElectionNotOpen
	}

	if !CanVote(student, election) {
		return models.Vote{}, ErrNotEligible
	}

	var approved bool
	err = s.db.QueryRow(`
		SELECT is_approved FROM candidate
		WHERE id = $1 AND position_id = $2
	`, candidateID, positionID).Scan(&approved)
	if err == sql.ErrNoRows {
		return models.Vote{}, ErrCandidateNotApproved
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	if !approved {
		return models.Vote{}, ErrCandidateNotApproved
	}

	var exists bool
	err = s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE student_id = $1 AND position_id = $2
		)
	`, student.ID, positionID).Scan(&exists)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to check existing vote: %w", err)
	}
	if exists {
		return models.Vote{}, ErrAlreadyVoted
	}

	vote := models.Vote{
		ID:          auth.NewID(),
		StudentID:   student.ID,
		PositionID:  positionID,
		CandidateID: candidateID,
		CastAt:      time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO vote (id, student_id, position_id, candidate_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
	`, vote.ID, vote.StudentID, vote.PositionID, vote.CandidateID, vote.CastAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			// Lost the race: another request inserted first.
			return models.Vote{}, ErrAlreadyVoted
		}
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	return vote, nil
}

// HasVoted reports whether a vote exists for (student, position).
func (s *Service) HasVoted(studentID, positionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE student_id = $1 AND position_id = $2
		)
	`, studentID, positionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

// VotedPositionIDs returns the IDs of positions in the election the
// student has already voted for.
func (s *Service) VotedPositionIDs(studentID, electionID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT v.position_id
		FROM vote v
		JOIN position p ON p.id = v.position_id
		WHERE v.student_id = $1 AND p.election_id = $2
	`, studentID, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voted positions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan voted position: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Service) electionForPosition(positionID string) (models.Election, error) {
	var e models.Election
	err := s.db.QueryRow(`
		SELECT e.id, e.title, e.description, e.start_at, e.end_at,
		       e.status, e.eligible_year_groups, e.results_published, e.created_at
		FROM position p
		JOIN election e ON e.id = p.election_id
		WHERE p.id = $1
	`, positionID).Scan(
		&e.ID, &e.Title, &e.Description, &e.StartAt, &e.EndAt,
		&e.Status, &e.EligibleYearGroups, &e.ResultsPublished, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Election{}, ErrPositionNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query position election: %w", err)
	}
	return e, nil
}
