// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Admin-Key.

# Sessions

RequireLogin rejects requests without a valid session cookie (401 with a
redirect to /accounts/login?next=...). WithSession attaches the session
when present and lets anonymous requests through:

	mux.HandleFunc("POST /polls/{id}/vote", middleware.RequireLogin(secret, handler))
	session, ok := middleware.SessionFromContext(r.Context())

# Logger

	slog.SetDefault(middleware.NewLogger(cfg.LogFormat, os.Stdout))

Text output on a terminal, JSON otherwise.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.RedirectError(w, http.StatusForbidden, "message", "/polls")

Parse JSON request bodies:

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Hashed with auth.HashIP before it is logged.
*/
package middleware
