// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/ku-polls/auth"
	"github.com/danielhkuo/ku-polls/db"
	"github.com/danielhkuo/ku-polls/models"
)

// upsertAttempts bounds retries after a concurrent insert by the same user.
const upsertAttempts = 2

// Result describes a successful vote submission.
type Result struct {
	Status string // models.VoteCreated or models.VoteUpdated
	Choice models.Choice
	Vote   models.Vote
}

// Engine applies the vote rules against the store.
type Engine struct {
	conn   *sql.DB
	logger *slog.Logger

	// insertVote writes a new vote row inside the upsert transaction.
	insertVote func(ctx context.Context, q Querier, vote models.Vote) error
}

func NewEngine(conn *sql.DB, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{conn: conn, logger: logger, insertVote: insertVote}
}

// SubmitVote records userID's choice for a question at time now.
//
// Checks run in order: the question must exist (ErrNotFound), voting must be
// open (ErrVotingClosed), and choiceID must name one of the question's
// choices (ErrInvalidChoice). Nothing is written when a check fails.
// Otherwise the user's existing vote is moved to the new choice, or a vote
// is created, so there is never more than one vote per user per question.
func (e *Engine) SubmitVote(ctx context.Context, userID, questionID, choiceID string, now time.Time) (Result, error) {
	question, err := GetQuestion(ctx, e.conn, questionID)
	if err != nil {
		return Result{}, err
	}

	if !CanVote(question, now) {
		return Result{}, ErrVotingClosed
	}

	choiceID = strings.TrimSpace(choiceID)
	if choiceID == "" {
		return Result{}, ErrInvalidChoice
	}
	choice, found, err := GetChoice(ctx, e.conn, question.ID, choiceID)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, ErrInvalidChoice
	}

	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		result, err := e.upsert(ctx, userID, choice, now)
		if err == nil {
			e.logger.Info("vote recorded",
				"user_id", userID,
				"question_id", question.ID,
				"choice_id", choice.ID,
				"status", result.Status,
			)
			return result, nil
		}
		if !db.IsUniqueViolation(err) {
			e.logger.Error("failed to record vote", "error", err, "question_id", question.ID)
			return Result{}, err
		}
		e.logger.Warn("vote upsert conflict",
			"user_id", userID,
			"question_id", question.ID,
			"attempt", attempt,
		)
	}

	return Result{}, ErrConflict
}

// upsert moves or creates the user's vote inside one transaction. The
// UNIQUE(user_id, question_id) constraint rejects a racing second insert.
func (e *Engine) upsert(ctx context.Context, userID string, choice models.Choice, now time.Time) (Result, error) {
	now = now.UTC()

	tx, err := e.conn.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	vote, isUpdate, err := GetUserVote(ctx, tx, userID, choice.QuestionID)
	if err != nil {
		return Result{}, err
	}

	status := models.VoteCreated
	if isUpdate {
		status = models.VoteUpdated
		vote.ChoiceID = choice.ID
		vote.UpdatedAt = now
		_, err = tx.ExecContext(ctx, `
			UPDATE vote
			SET choice_id = $1, updated_at = $2
			WHERE id = $3
		`, vote.ChoiceID, vote.UpdatedAt, vote.ID)
		if err != nil {
			return Result{}, fmt.Errorf("update vote: %w", err)
		}
	} else {
		vote = models.Vote{
			ID:         auth.NewID(),
			UserID:     userID,
			QuestionID: choice.QuestionID,
			ChoiceID:   choice.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := e.insertVote(ctx, tx, vote); err != nil {
			return Result{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit vote: %w", err)
	}

	return Result{Status: status, Choice: choice, Vote: vote}, nil
}

func insertVote(ctx context.Context, q Querier, vote models.Vote) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO vote (id, user_id, question_id, choice_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, vote.ID, vote.UserID, vote.QuestionID, vote.ChoiceID, vote.CreatedAt, vote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}
