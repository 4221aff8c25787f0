// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package voting

import (
	"fmt"

	"github.com/campusvote/campusvote/models"
)

// Turnout computes participation for each cohort in the election's
// eligible set. A student who voted in several positions counts once;
// a cohort with no eligible students reports 0 percent. Cohorts
// partition students, so the overall figures are the per-cohort sums
// under the same distinct-student rule.
func (s *Service) Turnout(election models.Election) (models.TurnoutReport, error) {
	report := models.TurnoutReport{Cohorts: []models.CohortTurnout{}}

	for _, yearGroup := range election.EligibleYearGroupList() {
		var eligible int
		err := s.db.QueryRow(`
			SELECT COUNT(*) FROM student
			WHERE year_group = $1 AND role = $2 AND is_eligible = TRUE
		`, yearGroup, models.RoleStudent).Scan(&eligible)
		if err != nil {
			return models.TurnoutReport{}, fmt.Errorf("failed to count eligible students: %w", err)
		}

		var voted int
		err = s.db.QueryRow(`
			SELECT COUNT(DISTINCT v.student_id)
			FROM vote v
			JOIN position p ON p.id = v.position_id
			JOIN student st ON st.id = v.student_id
			WHERE p.election_id = $1 AND st.year_group = $2
		`, election.ID, yearGroup).Scan(&voted)
		if err != nil {
			return models.TurnoutReport{}, fmt.Errorf("failed to count voters: %w", err)
		}

		report.Cohorts = append(report.Cohorts, models.CohortTurnout{
			YearGroup:  yearGroup,
			Eligible:   eligible,
			Voted:      voted,
			Percentage: percentage(voted, eligible),
		})
		report.TotalEligible += eligible
		report.TotalVoted += voted
	}

	report.OverallPercentage = percentage(report.TotalVoted, report.TotalEligible)
	return report, nil
}
