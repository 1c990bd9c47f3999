// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "errors"

// Errors returned by the question queries and Engine.SubmitVote. Handlers
// map them to HTTP statuses with errors.Is.
var (
	// ErrNotFound means no question exists with the given ID.
	ErrNotFound = errors.New("question not found")
	// ErrVotingClosed means the question is unpublished or past its end date.
	ErrVotingClosed = errors.New("question is not open for voting")
	// ErrInvalidChoice means no choice was given or it belongs to another question.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrConflict means a concurrent vote by the same user kept winning the
	// insert race after retrying.
	ErrConflict = errors.New("vote conflict, please try again")
	// ErrInvalidWindow means end_date falls before pub_date.
	ErrInvalidWindow = errors.New("end date is before publish date")
)
