// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campusvote/campusvote/audit"
	"github.com/campusvote/campusvote/cliparse"
	"github.com/campusvote/campusvote/middleware"
)

type AuditHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuditHandler(db *sql.DB, cfg cliparse.Config) *AuditHandler {
	return &AuditHandler{db: db, cfg: cfg}
}

// List handles GET /admin/audit-logs
// Supports ?action= and ?limit= filters; newest entries first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(h.db, w, r); !ok {
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := audit.Recent(h.db, r.URL.Query().Get("action"), limit)
	if err != nil {
		slog.Error("failed to query audit log", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}
