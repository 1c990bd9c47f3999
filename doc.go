// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the KU Polls API server.

KU Polls publishes questions with a fixed set of choices. Registered users
vote on a question while it is open and may change their vote until it
closes; each user holds at most one vote per question.

# Starting the Server

With no configuration beyond the secrets, the server uses a local SQLite file:

	SESSION_SECRET=... ADMIN_KEY=... go run .

Or against PostgreSQL with flags:

	go run . -p 8000 -t postgres -d "postgres://..." -session-secret ... -admin-key ...

A .env file in the working directory is loaded first when present.

# Configuration

Required settings:

  - SESSION_SECRET (-session-secret): HMAC key for session tokens
  - ADMIN_KEY (-admin-key): Value expected in X-Admin-Key

Optional settings:

  - PORT (-p): Server port (default: 8000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: file:polls.db for sqlite)
  - SESSION_TTL (-session-ttl): Session lifetime (default: 12h)
  - LOG_FORMAT (-log-format): text or json (default: text on a terminal)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (questions, voting, accounts, admin)
  - voting: Eligibility rules, vote engine and queries
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, JSON helpers
  - models: Request/response and domain types
  - auth: IDs, passwords, session tokens, admin key
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
