// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Internal data structures:

  - Student: account plus profile attributes (cohort, role, eligibility)
  - Election: election metadata and lifecycle state
  - Position: an electable role within an election
  - Candidate: a student standing for a position
  - Vote: one immutable ledger entry per (student, position)

# Request Types

Types for parsing incoming JSON:

  - RegisterStudentRequest: name, student_no, year_group
  - CreateElectionRequest / UpdateElectionRequest
  - CreatePositionRequest / UpdatePositionRequest
  - AddCandidateRequest / UpdateCandidateRequest
  - CastVoteRequest: candidate_id
  - SetEligibilityRequest: is_eligible

# Result Types

Aggregated views computed by the voting package:

  - CandidateResult: votes, percentage, winner flag
  - PositionResult / ElectionResults
  - CohortTurnout / TurnoutReport

# Constants

Election lifecycle:

	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusClosed   = "closed"
	StatusArchived = "archived"

Roles:

	RoleStudent  = "student"
	RoleAdmin    = "admin"
	RoleObserver = "observer"

Cohorts are year_7 through year_11; an election's eligible set is stored
comma-delimited and parsed with Election.EligibleYearGroupList.
*/
package models
