// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package models

import (
	"strings"
	"time"
)

// Election lifecycle constants
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusClosed   = "closed"
	StatusArchived = "archived"
)

// Account role constants
const (
	RoleStudent  = "student"
	RoleAdmin    = "admin"
	RoleObserver = "observer"
)

// Year group constants
const (
	Year7  = "year_7"
	Year8  = "year_8"
	Year9  = "year_9"
	Year10 = "year_10"
	Year11 = "year_11"
)

// YearGroups lists every valid cohort, in display order.
var YearGroups = []string{Year7, Year8, Year9, Year10, Year11}

// IsValidYearGroup reports whether yg is one of the known cohorts.
func IsValidYearGroup(yg string) bool {
	for _, known := range YearGroups {
		if yg == known {
			return true
		}
	}
	return false
}

// Request types

type RegisterStudentRequest struct {
	Name      string `json:"name"`
	StudentNo string `json:"student_no"`
	YearGroup string `json:"year_group"`
}

type CreateElectionRequest struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	StartAt            time.Time `json:"start_at"`
	EndAt              time.Time `json:"end_at"`
	EligibleYearGroups string    `json:"eligible_year_groups"`
}

type UpdateElectionRequest struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	StartAt            *time.Time `json:"start_at,omitempty"`
	EndAt              *time.Time `json:"end_at,omitempty"`
	EligibleYearGroups *string    `json:"eligible_year_groups,omitempty"`
}

type CreatePositionRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	DisplayOrder  int    `json:"display_order"`
	MaxCandidates int    `json:"max_candidates"`
}

type UpdatePositionRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	DisplayOrder  *int    `json:"display_order,omitempty"`
	MaxCandidates *int    `json:"max_candidates,omitempty"`
}

type AddCandidateRequest struct {
	StudentID string `json:"student_id"`
	Manifesto string `json:"manifesto"`
}

type UpdateCandidateRequest struct {
	Manifesto  *string `json:"manifesto,omitempty"`
	IsApproved *bool   `json:"is_approved,omitempty"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type SetEligibilityRequest struct {
	IsEligible *bool `json:"is_eligible"`
}

// Response types

type RegisterStudentResponse struct {
	StudentID   string `json:"student_id"`
	AccessToken string `json:"access_token"`
}

type CastVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type MyVotesResponse struct {
	ElectionID     string   `json:"election_id"`
	TotalPositions int      `json:"total_positions"`
	VotedPositions []string `json:"voted_positions"`
	Complete       bool     `json:"complete"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Student struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StudentNo   string    `json:"student_no"`
	YearGroup   string    `json:"year_group"`
	Role        string    `json:"role"`
	IsEligible  bool      `json:"is_eligible"`
	AccessToken string    `json:"-"` // Never expose in JSON
	CreatedAt   time.Time `json:"created_at"`
}

type Election struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	StartAt            time.Time `json:"start_at"`
	EndAt              time.Time `json:"end_at"`
	Status             string    `json:"status"`
	EligibleYearGroups string    `json:"eligible_year_groups"`
	ResultsPublished   bool      `json:"results_published"`
	CreatedAt          time.Time `json:"created_at"`
}

// EligibleYearGroupList splits the comma-delimited cohort set,
// dropping empty entries and surrounding whitespace.
func (e Election) EligibleYearGroupList() []string {
	parts := strings.Split(e.EligibleYearGroups, ",")
	groups := make([]string, 0, len(parts))
	for _, p := range parts {
		if yg := strings.TrimSpace(p); yg != "" {
			groups = append(groups, yg)
		}
	}
	return groups
}

type Position struct {
	ID            string    `json:"id"`
	ElectionID    string    `json:"election_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DisplayOrder  int       `json:"display_order"`
	MaxCandidates int       `json:"max_candidates"`
	CreatedAt     time.Time `json:"created_at"`
}

type Candidate struct {
	ID          string    `json:"id"`
	PositionID  string    `json:"position_id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	YearGroup   string    `json:"year_group"`
	Manifesto   string    `json:"manifesto"`
	IsApproved  bool      `json:"is_approved"`
	CreatedAt   time.Time `json:"created_at"`
}

type Vote struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	PositionID  string    `json:"position_id"`
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

// Composite views

type PositionDetail struct {
	Position   Position    `json:"position"`
	Candidates []Candidate `json:"candidates"`
	HasVoted   bool        `json:"has_voted"`
}

type ElectionDetail struct {
	Election  Election         `json:"election"`
	Eligible  bool             `json:"eligible"`
	Positions []PositionDetail `json:"positions"`
}

// Result types

type CandidateResult struct {
	Candidate  Candidate `json:"candidate"`
	Votes      int       `json:"votes"`
	Percentage float64   `json:"percentage"`
	IsWinner   bool      `json:"is_winner"`
}

type PositionResult struct {
	Position   Position          `json:"position"`
	TotalVotes int               `json:"total_votes"`
	Candidates []CandidateResult `json:"candidates"`
}

type ElectionResults struct {
	Election  Election         `json:"election"`
	Positions []PositionResult `json:"positions"`
}

// Turnout types

type CohortTurnout struct {
	YearGroup  string  `json:"year_group"`
	Eligible   int     `json:"eligible"`
	Voted      int     `json:"voted"`
	Percentage float64 `json:"percentage"`
}

type TurnoutReport struct {
	Cohorts           []CohortTurnout `json:"cohorts"`
	TotalEligible     int             `json:"total_eligible"`
	TotalVoted        int             `json:"total_voted"`
	OverallPercentage float64         `json:"overall_percentage"`
}

type AnalyticsResponse struct {
	Election Election         `json:"election"`
	Turnout  TurnoutReport    `json:"turnout"`
	Results  []PositionResult `json:"results"`
}
