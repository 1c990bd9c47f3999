// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration parsing from CLI flags and environment variables.

# Usage

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

# Configuration Priority

CLI flags take precedence over environment variables:

 1. CLI flags (-p, -d, -t, etc.)
 2. Environment variables (PORT, DATABASE_URL, etc.)
 3. Default values (port 8000, sqlite, file:polls.db, 12h sessions)

main loads a .env file into the environment before parsing, so values
from .env behave exactly like exported variables.

# Available Settings

	Flag              Env Variable     Required  Default
	-p                PORT             No        8000
	-d                DATABASE_URL     postgres  file:polls.db (sqlite)
	-t                DATABASE_TYPE    No        sqlite
	-session-ttl      SESSION_TTL      No        12h
	-log-format       LOG_FORMAT       No        text on a terminal, json otherwise
	-session-secret   SESSION_SECRET   Yes       -
	-admin-key        ADMIN_KEY        Yes       -

# Security Notes

Secrets (SESSION_SECRET, ADMIN_KEY) should be provided via environment
variables rather than CLI flags to avoid exposure in process listings.
*/
package cliparse
