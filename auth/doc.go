// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides account, session and key utilities.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, candidate) // ErrInvalidCredentials on mismatch

ValidatePassword requires at least 8 characters, not all digits.
ValidateUsername allows up to 150 letters, digits and @/./+/-/_.

# Sessions

Sessions are HS256 JWTs carried in a cookie:

	token, err := auth.IssueSessionToken(userID, username, secret, ttl, time.Now())
	session, err := auth.ParseSessionToken(token, secret, time.Now())

Expiry is checked against the time passed in, not the wall clock, so tests
can control it.

# Admin Key

Admin endpoints compare the X-Admin-Key header with the configured key in
constant time:

	err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

# IDs

NewID returns a UUIDv7 string; IDs sort in creation order.

# IP Hashing

For privacy-preserving request logs:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
