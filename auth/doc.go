// Copyright (c) 2025 The Campusvote Authors.
// Licensed under the MIT License; see LICENSE.

/*
Package auth provides identifiers, access tokens, and IP hashing.

# Access Tokens

Accounts are identified by an opaque random token issued once at
registration and sent back on every request in the X-Access-Token
header. There are no sessions and no passwords; authentication proper
is out of scope for this service.

	token, err := auth.GenerateAccessToken()

# Identifiers

NewID returns a UUID string used as the primary key for every record.

# IP Hashing

HashIP produces a salted one-way hash of a client IP for audit entries:

	hash := auth.HashIP(middleware.ClientIP(r), cfg.AuditSalt)

The salt comes from configuration so hashes are stable across restarts
but useless without the deployment's secret.
*/
package auth
