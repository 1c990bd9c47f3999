// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the KU Polls API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - QuestionHandler: index, detail and results pages
  - VotingHandler: vote submission through voting.Engine
  - AccountHandler: signup, login and logout
  - AdminHandler: question and choice management

Handlers are created via constructor functions that accept *sql.DB and Config:

	votingHandler := handlers.NewVotingHandler(db, cfg)

# Redirects

The API has no HTML pages. Where a browser flow would redirect with a
flash message, handlers return a JSON error carrying the message and a
redirect path:

	{"error": "Forbidden", "message": "Poll 7 is not available for voting.", "redirect": "/polls"}

# Voting Flow

	POST /polls/{id}/vote {"choice_id": "..."}

A first vote returns 201 with status "created"; voting again on the same
question moves the existing vote and returns 200 with status "updated".
An invalid or missing choice returns 400 with the question and its
choices so the form can be shown again.
*/
package handlers
