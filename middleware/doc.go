// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

# Request Logging

WithLogging logs request start and completion with method, path, and
duration through log/slog.

# JSON Helpers

JSONResponse, ErrorResponse, and ParseJSONBody keep handlers free of
encoding boilerplate. ErrorResponse always emits the models.ErrorResponse
shape so clients can rely on one error format.

# CORS

CORS reflects the request origin and allows the X-Access-Token header
used for identity.

# Client IP

ClientIP resolves the caller's address through X-Forwarded-For and
X-Real-IP before falling back to RemoteAddr; the audit trail stores a
salted hash of it.
*/
package middleware
