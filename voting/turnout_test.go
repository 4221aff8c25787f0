// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package voting

import (
	"testing"

	"github.com/campusvote/campusvote/models"
	"github.com/campusvote/campusvote/testutil"
)

func TestTurnoutDistinctStudents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	runner := testutil.CreateTestStudent(t, db, "Bob Jones", "S-1002", models.Year9)

	electionID := testutil.CreateTestElection(t, db, models.StatusClosed, "year_9,year_10")
	president := testutil.CreateTestPosition(t, db, electionID, "President")
	treasurer := testutil.CreateTestPosition(t, db, electionID, "Treasurer")
	cp := testutil.CreateTestCandidate(t, db, president, runner.ID)
	ct := testutil.CreateTestCandidate(t, db, treasurer, runner.ID)

	// Two eligible year_9 students; one votes in both positions, one
	// abstains. Voting twice must still count as a single voter.
	voter := testutil.CreateTestStudent(t, db, "Alice Smith", "S-1001", models.Year9)
	testutil.CreateTestStudent(t, db, "Carol White", "S-1003", models.Year9)
	testutil.CastTestVote(t, db, voter.ID, president, cp)
	testutil.CastTestVote(t, db, voter.ID, treasurer, ct)

	election, err := loadElection(db, electionID)
	if err != nil {
		t.Fatalf("Failed to load election: %v", err)
	}

	report, err := svc.Turnout(election)
	if err != nil {
		t.Fatalf("Turnout failed: %v", err)
	}

	if len(report.Cohorts) != 2 {
		t.Fatalf("Expected 2 cohorts, got %d", len(report.Cohorts))
	}

	year9 := report.Cohorts[0]
	if year9.YearGroup != models.Year9 {
		t.Fatalf("Expected year_9 first, got %s", year9.YearGroup)
	}
	// runner counts as eligible too: 3 eligible, 1 voted
	if year9.Eligible != 3 {
		t.Errorf("Expected 3 eligible in year_9, got %d", year9.Eligible)
	}
	if year9.Voted != 1 {
		t.Errorf("Expected 1 distinct voter in year_9, got %d", year9.Voted)
	}
	if year9.Percentage != 33.3 {
		t.Errorf("Expected 33.3 percent, got %f", year9.Percentage)
	}
}

func TestTurnoutEmptyCohort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	electionID := testutil.CreateTestElection(t, db, models.StatusClosed, "year_11")

	election, err := loadElection(db, electionID)
	if err != nil {
		t.Fatalf("Failed to load election: %v", err)
	}

	report, err := svc.Turnout(election)
	if err != nil {
		t.Fatalf("Turnout failed: %v", err)
	}

	if len(report.Cohorts) != 1 {
		t.Fatalf("Expected 1 cohort, got %d", len(report.Cohorts))
	}
	c := report.Cohorts[0]
	if c.Eligible != 0 || c.Voted != 0 {
		t.Errorf("Expected empty cohort, got eligible=%d voted=%d", c.Eligible, c.Voted)
	}
	if c.Percentage != 0 {
		t.Errorf("Empty cohort must report 0 percent, got %f", c.Percentage)
	}
	if report.OverallPercentage != 0 {
		t.Errorf("Expected 0 overall percent, got %f", report.OverallPercentage)
	}
}

func TestTurnoutExcludesSuspendedAndNonStudents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	runner := testutil.CreateTestStudent(t, db, "Bob Jones", "S-1002", models.Year9)
	electionID := testutil.CreateTestElection(t, db, models.StatusClosed, "year_9")
	positionID := testutil.CreateTestPosition(t, db, electionID, "President")
	testutil.CreateTestCandidate(t, db, positionID, runner.ID)

	testutil.CreateTestStudent(t, db, "Alice Smith", "S-1001", models.Year9)

	// Suspended student does not count as eligible
	suspended := testutil.CreateTestStudent(t, db, "Carol White", "S-1003", models.Year9)
	if _, err := db.Exec(`UPDATE student SET is_eligible = FALSE WHERE id = $1`, suspended.ID); err != nil {
		t.Fatalf("Failed to suspend student: %v", err)
	}

	// Admin accounts never count in the denominator
	testutil.CreateTestAdmin(t, db)

	election, err := loadElection(db, electionID)
	if err != nil {
		t.Fatalf("Failed to load election: %v", err)
	}

	report, err := svc.Turnout(election)
	if err != nil {
		t.Fatalf("Turnout failed: %v", err)
	}

	if report.TotalEligible != 2 {
		t.Errorf("Expected 2 eligible (runner and Alice), got %d", report.TotalEligible)
	}
}

func TestTurnoutOverallSumsCohorts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db)

	runner := testutil.CreateTestStudent(t, db, "Bob Jones", "S-1002", models.Year9)
	electionID := testutil.CreateTestElection(t, db, models.StatusClosed, "year_9,year_10")
	positionID := testutil.CreateTestPosition(t, db, electionID, "President")
	candidateID := testutil.CreateTestCandidate(t, db, positionID, runner.ID)

	v9 := testutil.CreateTestStudent(t, db, "Alice Smith", "S-1001", models.Year9)
	v10 := testutil.CreateTestStudent(t, db, "Dan Green", "S-1004", models.Year10)
	testutil.CreateTestStudent(t, db, "Eve Black", "S-1005", models.Year10)
	testutil.CastTestVote(t, db, v9.ID, positionID, candidateID)
	testutil.CastTestVote(t, db, v10.ID, positionID, candidateID)

	election, err := loadElection(db, electionID)
	if err != nil {
		t.Fatalf("Failed to load election: %v", err)
	}

	report, err := svc.Turnout(election)
	if err != nil {
		t.Fatalf("Turnout failed: %v", err)
	}

	var eligible, voted int
	for _, c := range report.Cohorts {
		eligible += c.Eligible
		voted += c.Voted
	}
	if report.TotalEligible != eligible || report.TotalVoted != voted {
		t.Errorf("Totals must equal cohort sums: got %d/%d vs %d/%d",
			report.TotalEligible, report.TotalVoted, eligible, voted)
	}
	// 2 of 4 eligible voted
	if report.OverallPercentage != 50.0 {
		t.Errorf("Expected 50.0 overall percent, got %f", report.OverallPercentage)
	}
}
