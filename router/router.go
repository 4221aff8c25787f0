// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/campusvote/campusvote/cliparse"
	"github.com/campusvote/campusvote/handlers"
	"github.com/campusvote/campusvote/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	studentHandler := handlers.NewStudentHandler(db, cfg)
	electionHandler := handlers.NewElectionHandler(db, cfg)
	positionHandler := handlers.NewPositionHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	auditHandler := handlers.NewAuditHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Registration and identity
	mux.HandleFunc("POST /students", middleware.WithLogging(studentHandler.Register))
	mux.HandleFunc("GET /students/me", middleware.WithLogging(studentHandler.Me))

	// Student-facing election browsing and voting
	mux.HandleFunc("GET /elections", middleware.WithLogging(votingHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(votingHandler.GetElection))
	mux.HandleFunc("GET /elections/{id}/my-votes", middleware.WithLogging(votingHandler.MyVotes))
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /candidates/{id}", middleware.WithLogging(votingHandler.GetCandidate))
	mux.HandleFunc("POST /positions/{id}/votes", middleware.WithLogging(votingHandler.CastVote))

	// Election administration
	mux.HandleFunc("POST /admin/elections", middleware.WithLogging(electionHandler.Create))
	mux.HandleFunc("GET /admin/elections", middleware.WithLogging(electionHandler.List))
	mux.HandleFunc("GET /admin/elections/{id}", middleware.WithLogging(electionHandler.Get))
	mux.HandleFunc("PATCH /admin/elections/{id}", middleware.WithLogging(electionHandler.Update))
	mux.HandleFunc("DELETE /admin/elections/{id}", middleware.WithLogging(electionHandler.Delete))
	mux.HandleFunc("POST /admin/elections/{id}/activate", middleware.WithLogging(electionHandler.Activate))
	mux.HandleFunc("POST /admin/elections/{id}/close", middleware.WithLogging(electionHandler.Close))
	mux.HandleFunc("POST /admin/elections/{id}/archive", middleware.WithLogging(electionHandler.Archive))
	mux.HandleFunc("POST /admin/elections/{id}/publish-results", middleware.WithLogging(electionHandler.PublishResults))

	// Positions and candidates
	mux.HandleFunc("POST /admin/elections/{id}/positions", middleware.WithLogging(positionHandler.Create))
	mux.HandleFunc("PATCH /admin/positions/{id}", middleware.WithLogging(positionHandler.Update))
	mux.HandleFunc("DELETE /admin/positions/{id}", middleware.WithLogging(positionHandler.Delete))
	mux.HandleFunc("POST /admin/positions/{id}/candidates", middleware.WithLogging(positionHandler.AddCandidate))
	mux.HandleFunc("PATCH /admin/candidates/{id}", middleware.WithLogging(positionHandler.UpdateCandidate))
	mux.HandleFunc("DELETE /admin/candidates/{id}", middleware.WithLogging(positionHandler.DeleteCandidate))

	// Voter roll and analytics
	mux.HandleFunc("GET /admin/students", middleware.WithLogging(studentHandler.List))
	mux.HandleFunc("PATCH /admin/students/{id}/eligibility", middleware.WithLogging(studentHandler.SetEligibility))
	mux.HandleFunc("GET /admin/elections/{id}/analytics", middleware.WithLogging(resultsHandler.Analytics))
	mux.HandleFunc("GET /admin/elections/{id}/results.csv", middleware.WithLogging(resultsHandler.ExportCSV))
	mux.HandleFunc("GET /admin/audit-logs", middleware.WithLogging(auditHandler.List))

	// Root endpoint; {$} keeps it from swallowing unknown paths
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("campusvote API v1"))
	})

	return mux
}
