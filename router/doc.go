// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the KU Polls API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Polls (public):

	GET /polls                - Latest five published questions
	GET /polls/{id}           - Question and choices, plus prev_vote when logged in
	GET /polls/{id}/results   - Vote counts per choice

Voting (requires the sessionid cookie):

	POST /polls/{id}/vote     - Create or change the caller's vote

Accounts:

	POST /accounts/signup     - Register and log in
	POST /accounts/login      - Start a session
	POST /accounts/logout     - End the session

Question management (requires X-Admin-Key):

	GET    /admin/questions              - List with ?q= filter
	POST   /admin/questions              - Create question with choices
	POST   /admin/questions/{id}/choices - Add choice
	DELETE /admin/questions/{id}         - Delete question, choices and votes

GET / redirects to /polls.
*/
package router
