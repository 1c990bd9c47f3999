// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting holds the poll rules: eligibility windows and the
one-vote-per-user upsert.

# Eligibility

Pure predicates over a question and a caller-supplied time:

	voting.IsPublished(q, now)          // now >= pub_date
	voting.WasPublishedRecently(q, now) // pub_date within the last 24h
	voting.CanVote(q, now)              // pub_date <= now <= end_date (end_date optional)

# Submitting Votes

	engine := voting.NewEngine(conn, slog.Default())
	result, err := engine.SubmitVote(ctx, userID, questionID, choiceID, time.Now())

Errors, checked in this order:

  - ErrNotFound: no such question
  - ErrVotingClosed: outside the eligibility window
  - ErrInvalidChoice: missing choice or a choice of another question
  - ErrConflict: a concurrent submission won twice in a row

result.Status is models.VoteCreated for a first vote and models.VoteUpdated
when an existing vote was moved. Resubmitting always leaves exactly one
vote row for the user and question.

# Queries

GetQuestion, LatestPublished, ListChoices, GetUserVote and Results back the
read endpoints. CreateQuestion, AddChoice and DeleteQuestion back the admin
endpoints.
*/
package voting
