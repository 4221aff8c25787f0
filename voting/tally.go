// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package voting

import (
	"fmt"
	"math"
	"sort"

	"github.com/campusvote/campusvote/models"
)

// Tally aggregates the vote ledger for one position into per-candidate
// counts and percentages. Only approved candidates appear, but the
// percentage denominator is every vote recorded for the position, so
// votes held by a since-unapproved candidate still count toward the
// total. Results are ordered by vote count descending; equal counts
// order by candidate ID ascending so the output is deterministic. The
// leader is flagged as winner only when its count is above zero.
func (s *Service) Tally(positionID string) ([]models.CandidateResult, error) {
	total, err := s.PositionVoteCount(positionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT c.id, c.position_id, c.student_id, s.name, s.year_group,
		       c.manifesto, c.is_approved, c.created_at, COUNT(v.id)
		FROM candidate c
		JOIN student s ON s.id = c.student_id
		LEFT JOIN vote v ON v.candidate_id = c.id
		WHERE c.position_id = $1 AND c.is_approved = TRUE
		GROUP BY c.id, c.position_id, c.student_id, s.name, s.year_group,
		         c.manifesto, c.is_approved, c.created_at
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tally: %w", err)
	}
	defer rows.Close()

	results := []models.CandidateResult{}
	for rows.Next() {
		var r models.CandidateResult
		if err := rows.Scan(
			&r.Candidate.ID, &r.Candidate.PositionID, &r.Candidate.StudentID,
			&r.Candidate.StudentName, &r.Candidate.YearGroup,
			&r.Candidate.Manifesto, &r.Candidate.IsApproved, &r.Candidate.CreatedAt,
			&r.Votes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tally row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tally rows: %w", err)
	}

	for i := range results {
		results[i].Percentage = percentage(results[i].Votes, total)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Votes != results[j].Votes {
			return results[i].Votes > results[j].Votes
		}
		return results[i].Candidate.ID < results[j].Candidate.ID
	})

	// An all-zero position has no winner.
	if len(results) > 0 && results[0].Votes > 0 {
		results[0].IsWinner = true
	}

	return results, nil
}

// ElectionResults computes the tally for every position in the
// election, ordered by display order then title.
func (s *Service) ElectionResults(election models.Election) (models.ElectionResults, error) {
	positions, err := s.Positions(election.ID)
	if err != nil {
		return models.ElectionResults{}, err
	}

	out := models.ElectionResults{Election: election, Positions: []models.PositionResult{}}
	for _, pos := range positions {
		candidates, err := s.Tally(pos.ID)
		if err != nil {
			return models.ElectionResults{}, err
		}
		total, err := s.PositionVoteCount(pos.ID)
		if err != nil {
			return models.ElectionResults{}, err
		}
		out.Positions = append(out.Positions, models.PositionResult{
			Position:   pos,
			TotalVotes: total,
			Candidates: candidates,
		})
	}
	return out, nil
}

// PositionVoteCount counts every vote recorded for the position,
// regardless of the receiving candidate's current approval state.
func (s *Service) PositionVoteCount(positionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM vote WHERE position_id = $1
	`, positionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count position votes: %w", err)
	}
	return n, nil
}

// Positions returns the election's positions in display order.
func (s *Service) Positions(electionID string) ([]models.Position, error) {
	rows, err := s.db.Query(`
		SELECT id, election_id, title, description, display_order, max_candidates, created_at
		FROM position
		WHERE election_id = $1
		ORDER BY display_order, title
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.ElectionID, &p.Title, &p.Description,
			&p.DisplayOrder, &p.MaxCandidates, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// percentage returns part/total as a percentage rounded to one decimal
// place, and 0 when total is zero.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
