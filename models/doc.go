// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - SignupRequest: username, password1, password2
  - LoginRequest: username, password
  - VoteRequest: choice_id
  - CreateQuestionRequest: question_text, pub_date, end_date, choices
  - AddChoiceRequest: choice_text

# Response Types

  - IndexResponse: latest_question_list
  - DetailResponse: question, choices, prev_vote
  - VoteResponse: status, choice, message, results_url
  - ResultsResponse: question, per-choice votes, total_votes
  - AccountResponse, MessageResponse
  - ErrorResponse: error, message, redirect
  - InvalidChoiceResponse: detail view plus error_message

# Domain Types

  - Question: text with pub_date and optional end_date
  - Choice: option owned by a question
  - Vote: a user's current choice for a question
  - User: account with bcrypt password hash

Fields that must never leave the server (Vote.UserID, User.PasswordHash)
are tagged json:"-".
*/
package models
