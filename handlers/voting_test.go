package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusvote/campusvote/models"
	"github.com/campusvote/campusvote/testutil"
)

func TestCastVoteHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	voter := testutil.CreateTestStudent(t, db, "Alice Smith", "S-1001", models.Year9)
	outsider := testutil.CreateTestStudent(t, db, "Carol White", "S-1003", models.Year7)
	runner := testutil.CreateTestStudent(t, db, "Bob Jones", "S-1002", models.Year9)

	electionID := testutil.CreateTestElection(t, db, models.StatusActive, "year_9,year_10")
	positionID := testutil.CreateTestPosition(t, db, electionID, "President")
	candidateID := testutil.CreateTestCandidate(t, db, positionID, runner.ID)

	closedElection := testutil.CreateTestElection(t, db, models.StatusClosed, "year_9")
	closedPosition := testutil.CreateTestPosition(t, db, closedElection, "Treasurer")
	closedCandidate := testutil.CreateTestCandidate(t, db, closedPosition, runner.ID)

	tests := []struct {
		name           string
		positionID     string
		token          string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CastVoteResponse)
	}{
		{
			name:        "valid vote",
			positionID:  positionID,
			token:       voter.AccessToken,
			requestBody: models.CastVoteRequest{CandidateID: candidateID},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CastVoteResponse) {
				if resp.VoteID == "" {
					t.Error("Expected non-empty vote_id")
				}

				var count int
				err := db.QueryRow(`
					SELECT COUNT(*) FROM vote WHERE student_id = $1 AND position_id = $2
				`, voter.ID, positionID).Scan(&count)
				if err != nil {
					t.Fatalf("Failed to count votes: %v", err)
				}
				if count != 1 {
					t.Errorf("Expected 1 vote row, got %d", count)
				}
			},
		},
		{
			name:           "duplicate vote",
			positionID:     positionID,
			token:          voter.AccessToken,
			requestBody:    models.CastVoteRequest{CandidateID: candidateID},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "ineligible cohort",
			positionID:     positionID,
			token:          outsider.AccessToken,
			requestBody:    models.CastVoteRequest{CandidateID: candidateID},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "closed election",
			positionID:     closedPosition,
			token:          voter.AccessToken,
			requestBody:    models.CastVoteRequest{CandidateID: closedCandidate},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "candidate from another position",
			positionID:     positionID,
			token:          runner.AccessToken,
			requestBody:    models.CastVoteRequest{CandidateID: closedCandidate},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing candidate id",
			positionID:     positionID,
			token:          runner.AccessToken,
			requestBody:    models.CastVoteRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "position not found",
			positionID:     "no-such-position",
			token:          voter.AccessToken,
			requestBody:    models.CastVoteRequest{CandidateID: candidateID},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing token",
			positionID:     positionID,
			token:          "",
			requestBody:    models.CastVoteRequest{CandidateID: candidateID},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			positionID:     positionID,
			token:          "bogus-token",
			requestBody:    models.CastVoteRequest{CandidateID: candidateID},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers["X-Access-Token"] = tt.token
			}
			req := testutil.MakeRequest("POST", "/positions/"+tt.positionID+"/votes", tt.requestBody, headers)
			req.SetPathValue("id", tt.positionID)
			w := httptest.NewRecorder()

			handler.CastVote(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.CastVoteResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestListElectionsVisibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	student := testutil.CreateTestStudent(t, db, "Alice Smith", "S-1001", models.Year9)

	active := testutil.CreateTestElection(t, db, models.StatusActive, "")
	testutil.CreateTestElection(t, db, models.StatusDraft, "")
	testutil.CreateTestElection(t, db, models.StatusClosed, "") // unpublished
	published := testutil.CreateTestElection(t, db, models.StatusClosed, "")
	testutil.PublishTestResults(t, db, published)

	req := testutil.MakeRequest("GET", "/elections", nil, testutil.AuthHeader(student))
	w := httptest.NewRecorder()
	handler.ListElections(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp []models.Election
	testutil.AssertJSON(t, w, &resp)
	if len(resp) != 2 {
		t.Fatalf("Expected 2 visible elections, got %d", len(resp))
	}
	seen := map[string]bool{}
	for _, e := range resp {
		seen[e.ID] = true
	}
	if !seen[active] || !seen[published] {
		t.Error("Expected the active and the published-closed elections to be visible")
	}
}

func TestGetElectionDetail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	student := testutil.CreateTestStudent(t, db, "Alice Smith", "S-1001", models.Year9)
	runner := testutil.CreateTestStudent(t, db, "Bob Jones", "S-1002", models.Year9)
	hidden := testutil.CreateTestStudent(t, db, "Carol White", "S-1003", models.Year9)

	electionID := testutil.CreateTestElection(t, db, models.StatusActive, "year_9")
	president := testutil.CreateTestPosition(t, db, electionID, "President")
	treasurer := testutil.CreateTestPosition(t, db, electionID, "Treasurer")
	c1 := testutil.CreateTestCandidate(t, db, president, runner.ID)
	withdrawn := testutil.CreateTestCandidate(t, db, president, hidden.ID)
	if _, err := db.Exec(`UPDATE candidate SET is_approved = FALSE WHERE id = $1`, withdrawn); err != nil {
		t.Fatalf("Failed to unapprove candidate: %v", err)
	}

	testutil.CastTestVote(t, db, student.ID, president, c1)

	req := testutil.MakeRequest("GET", "/elections/"+electionID, nil, testutil.AuthHeader(student))
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.GetElection(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ElectionDetail
	testutil.AssertJSON(t, w, &resp)

	if !resp.Eligible {
		t.Error("Expected the year_9 student to be eligible")
	}
	if len(resp.Positions) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(resp.Positions))
	}

	for _, p := range resp.Positions {
		switch p.Position.ID {
		case president:
			if len(p.Candidates) != 1 {
				t.Errorf("Expected only the approved candidate, got %d", len(p.Candidates))
			}
			if !p.HasVoted {
				t.Error("Expected has_voted true for president")
			}
		case treasurer:
			if p.HasVoted {
				t.Error("Expected has_voted false for treasurer")
			}
		}
	}
}

func TestGetCandidateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	student := testutil.CreateTestStudent(t, db, "Alice Smith", "S-1001", models.Year9)
	runner := testutil.CreateTestStudent(t, db, "Bob Jones", "S-1002", models.Year9)

	electionID := testutil.CreateTestElection(t, db, models.StatusActive, "")
	positionID := testutil.CreateTestPosition(t, db, electionID, "President")
	candidateID := testutil.CreateTestCandidate(t, db, positionID, runner.ID)

	req := testutil.MakeRequest("GET", "/candidates/"+candidateID, nil, testutil.AuthHeader(student))
	req.SetPathValue("id", candidateID)
	w := httptest.NewRecorder()
	handler.GetCandidate(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.Candidate
	testutil.AssertJSON(t, w, &resp)
	if resp.StudentName != "Bob Jones" || resp.Manifesto == "" {
		t.Error("Candidate profile incomplete")
	}

	// Withdrawn candidates are invisible
	if _, err := db.Exec(`UPDATE candidate SET is_approved = FALSE WHERE id = $1`, candidateID); err != nil {
		t.Fatalf("Failed to unapprove candidate: %v", err)
	}
	req = testutil.MakeRequest("GET", "/candidates/"+candidateID, nil, testutil.AuthHeader(student))
	req.SetPathValue("id", candidateID)
	w = httptest.NewRecorder()
	handler.GetCandidate(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestMyVotesProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	student := testutil.CreateTestStudent(t, db, "Alice Smith", "S-1001", models.Year9)
	runner := testutil.CreateTestStudent(t, db, "Bob Jones", "S-1002", models.Year9)

	electionID := testutil.CreateTestElection(t, db, models.StatusActive, "")
	president := testutil.CreateTestPosition(t, db, electionID, "President")
	treasurer := testutil.CreateTestPosition(t, db, electionID, "Treasurer")
	c1 := testutil.CreateTestCandidate(t, db, president, runner.ID)
	c2 := testutil.CreateTestCandidate(t, db, treasurer, runner.ID)

	check := func(wantVoted int, wantComplete bool) {
		t.Helper()
		req := testutil.MakeRequest("GET", "/elections/"+electionID+"/my-votes", nil, testutil.AuthHeader(student))
		req.SetPathValue("id", electionID)
		w := httptest.NewRecorder()
		handler.MyVotes(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.MyVotesResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.TotalPositions != 2 {
			t.Errorf("Expected 2 total positions, got %d", resp.TotalPositions)
		}
		if len(resp.VotedPositions) != wantVoted {
			t.Errorf("Expected %d voted positions, got %d", wantVoted, len(resp.VotedPositions))
		}
		if resp.Complete != wantComplete {
			t.Errorf("Expected complete=%v, got %v", wantComplete, resp.Complete)
		}
	}

	check(0, false)
	testutil.CastTestVote(t, db, student.ID, president, c1)
	check(1, false)
	testutil.CastTestVote(t, db, student.ID, treasurer, c2)
	check(2, true)
}
