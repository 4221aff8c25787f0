// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusvote/campusvote/models"
	"github.com/campusvote/campusvote/testutil"
)

// TestFullElectionWorkflow tests the complete end-to-end workflow:
// 1. Students register
// 2. Admin creates an election with a position and candidates
// 3. Admin activates the election
// 4. Students vote (and a second vote is refused)
// 5. Admin closes the election and publishes results
// 6. Students read results; admin reads analytics and exports CSV
func TestFullElectionWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := testutil.GetTestConfig()
	studentHandler := NewStudentHandler(db, cfg)
	electionHandler := NewElectionHandler(db, cfg)
	positionHandler := NewPositionHandler(db, cfg)
	votingHandler := NewVotingHandler(db, cfg)
	resultsHandler := NewResultsHandler(db, cfg)

	admin := testutil.CreateTestAdmin(t, db)

	// Step 1: register three voters and two runners
	register := func(name, no, yg string) models.RegisterStudentResponse {
		t.Helper()
		req := testutil.MakeRequest("POST", "/students", models.RegisterStudentRequest{
			Name: name, StudentNo: no, YearGroup: yg,
		}, nil)
		w := httptest.NewRecorder()
		studentHandler.Register(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Register %s failed: %d - %s", name, w.Code, w.Body.String())
		}
		var resp models.RegisterStudentResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	alice := register("Alice Smith", "S-1001", models.Year9)
	bob := register("Bob Jones", "S-1002", models.Year9)
	carol := register("Carol White", "S-1003", models.Year10)
	runner1 := register("Dan Green", "S-1004", models.Year9)
	runner2 := register("Eve Black", "S-1005", models.Year10)
	t.Logf("Step 1 - Registered 5 students")

	// Step 2: create election, position, candidates
	now := time.Now()
	req := testutil.MakeRequest("POST", "/admin/elections", models.CreateElectionRequest{
		Title:              "Student Council 2026",
		Description:        "Annual council election",
		StartAt:            now.Add(-time.Hour),
		EndAt:              now.Add(time.Hour),
		EligibleYearGroups: "year_9,year_10",
	}, map[string]string{"X-Access-Token": admin.AccessToken})
	w := httptest.NewRecorder()
	electionHandler.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Create election failed: %d - %s", w.Code, w.Body.String())
	}
	var election models.Election
	testutil.AssertJSON(t, w, &election)

	req = testutil.MakeRequest("POST", "/admin/elections/"+election.ID+"/positions",
		models.CreatePositionRequest{Title: "President"},
		map[string]string{"X-Access-Token": admin.AccessToken})
	req.SetPathValue("id", election.ID)
	w = httptest.NewRecorder()
	positionHandler.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Create position failed: %d - %s", w.Code, w.Body.String())
	}
	var position models.Position
	testutil.AssertJSON(t, w, &position)

	addCandidate := func(studentID, manifesto string) models.Candidate {
		t.Helper()
		req := testutil.MakeRequest("POST", "/admin/positions/"+position.ID+"/candidates",
			models.AddCandidateRequest{StudentID: studentID, Manifesto: manifesto},
			map[string]string{"X-Access-Token": admin.AccessToken})
		req.SetPathValue("id", position.ID)
		w := httptest.NewRecorder()
		positionHandler.AddCandidate(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Add candidate failed: %d - %s", w.Code, w.Body.String())
		}
		var c models.Candidate
		testutil.AssertJSON(t, w, &c)
		return c
	}

	c1 := addCandidate(runner1.StudentID, "Better lunches.")
	c2 := addCandidate(runner2.StudentID, "More clubs.")
	t.Logf("Step 2 - Election %s with position %s and 2 candidates", election.ID, position.ID)

	// Step 3: voting is refused while the election is a draft
	req = testutil.MakeRequest("POST", "/positions/"+position.ID+"/votes",
		models.CastVoteRequest{CandidateID: c1.ID},
		map[string]string{"X-Access-Token": alice.AccessToken})
	req.SetPathValue("id", position.ID)
	w = httptest.NewRecorder()
	votingHandler.CastVote(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("Step 3 - Draft election accepted a vote: %d", w.Code)
	}

	req = testutil.MakeRequest("POST", "/admin/elections/"+election.ID+"/activate", nil,
		map[string]string{"X-Access-Token": admin.AccessToken})
	req.SetPathValue("id", election.ID)
	w = httptest.NewRecorder()
	electionHandler.Activate(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 3 - Activate failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 4: three students vote; Alice's second attempt is refused
	vote := func(token, candidateID string, expect int) {
		t.Helper()
		req := testutil.MakeRequest("POST", "/positions/"+position.ID+"/votes",
			models.CastVoteRequest{CandidateID: candidateID},
			map[string]string{"X-Access-Token": token})
		req.SetPathValue("id", position.ID)
		w := httptest.NewRecorder()
		votingHandler.CastVote(w, req)
		if w.Code != expect {
			t.Fatalf("Step 4 - Vote: expected %d, got %d - %s", expect, w.Code, w.Body.String())
		}
	}

	vote(alice.AccessToken, c1.ID, http.StatusCreated)
	vote(bob.AccessToken, c1.ID, http.StatusCreated)
	vote(carol.AccessToken, c2.ID, http.StatusCreated)
	vote(alice.AccessToken, c2.ID, http.StatusConflict)
	t.Logf("Step 4 - 3 votes recorded, duplicate refused")

	// Step 5: results are sealed until closed and published
	req = testutil.MakeRequest("GET", "/elections/"+election.ID+"/results", nil,
		map[string]string{"X-Access-Token": alice.AccessToken})
	req.SetPathValue("id", election.ID)
	w = httptest.NewRecorder()
	resultsHandler.GetResults(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Step 5 - Unpublished results leaked: %d", w.Code)
	}

	req = testutil.MakeRequest("POST", "/admin/elections/"+election.ID+"/close", nil,
		map[string]string{"X-Access-Token": admin.AccessToken})
	req.SetPathValue("id", election.ID)
	w = httptest.NewRecorder()
	electionHandler.Close(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Close failed: %d - %s", w.Code, w.Body.String())
	}

	// Voting after close is refused
	vote(carol.AccessToken, c1.ID, http.StatusConflict)

	req = testutil.MakeRequest("POST", "/admin/elections/"+election.ID+"/publish-results", nil,
		map[string]string{"X-Access-Token": admin.AccessToken})
	req.SetPathValue("id", election.ID)
	w = httptest.NewRecorder()
	electionHandler.PublishResults(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Publish failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 6: students can now read the results
	req = testutil.MakeRequest("GET", "/elections/"+election.ID+"/results", nil,
		map[string]string{"X-Access-Token": alice.AccessToken})
	req.SetPathValue("id", election.ID)
	w = httptest.NewRecorder()
	resultsHandler.GetResults(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Read results failed: %d - %s", w.Code, w.Body.String())
	}

	var results models.ElectionResults
	testutil.AssertJSON(t, w, &results)
	if len(results.Positions) != 1 {
		t.Fatalf("Step 6 - Expected 1 position, got %d", len(results.Positions))
	}
	pres := results.Positions[0]
	if pres.TotalVotes != 3 {
		t.Errorf("Step 6 - Expected 3 total votes, got %d", pres.TotalVotes)
	}
	if pres.Candidates[0].Candidate.ID != c1.ID || pres.Candidates[0].Votes != 2 {
		t.Errorf("Step 6 - Expected %s leading with 2 votes", c1.ID)
	}
	if !pres.Candidates[0].IsWinner {
		t.Error("Step 6 - Expected the leader flagged as winner")
	}
	if pres.Candidates[0].Percentage != 66.7 || pres.Candidates[1].Percentage != 33.3 {
		t.Errorf("Step 6 - Expected 66.7/33.3 split, got %f/%f",
			pres.Candidates[0].Percentage, pres.Candidates[1].Percentage)
	}

	// Admin analytics: 3 of 5 eligible students voted
	req = testutil.MakeRequest("GET", "/admin/elections/"+election.ID+"/analytics", nil,
		map[string]string{"X-Access-Token": admin.AccessToken})
	req.SetPathValue("id", election.ID)
	w = httptest.NewRecorder()
	resultsHandler.Analytics(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Analytics failed: %d - %s", w.Code, w.Body.String())
	}

	var analytics struct {
		Turnout models.TurnoutReport `json:"turnout"`
	}
	testutil.AssertJSON(t, w, &analytics)
	if analytics.Turnout.TotalEligible != 5 || analytics.Turnout.TotalVoted != 3 {
		t.Errorf("Step 6 - Expected turnout 3/5, got %d/%d",
			analytics.Turnout.TotalVoted, analytics.Turnout.TotalEligible)
	}
	if analytics.Turnout.OverallPercentage != 60.0 {
		t.Errorf("Step 6 - Expected 60.0 overall percent, got %f", analytics.Turnout.OverallPercentage)
	}

	// CSV export carries one row per candidate
	req = testutil.MakeRequest("GET", "/admin/elections/"+election.ID+"/results.csv", nil,
		map[string]string{"X-Access-Token": admin.AccessToken})
	req.SetPathValue("id", election.ID)
	w = httptest.NewRecorder()
	resultsHandler.ExportCSV(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - CSV export failed: %d", w.Code)
	}

	t.Logf("Step 6 - Results, analytics, and export verified")
}
