// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/danielhkuo/ku-polls/auth"
	"github.com/danielhkuo/ku-polls/models"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const questionColumns = `id, question_text, pub_date, end_date`

func scanQuestion(row interface{ Scan(...any) error }) (models.Question, error) {
	var q models.Question
	var endDate sql.NullTime
	if err := row.Scan(&q.ID, &q.QuestionText, &q.PubDate, &endDate); err != nil {
		return models.Question{}, err
	}
	q.PubDate = q.PubDate.UTC()
	if endDate.Valid {
		end := endDate.Time.UTC()
		q.EndDate = &end
	}
	return q, nil
}

// GetQuestion loads a question by ID, returning ErrNotFound if absent.
func GetQuestion(ctx context.Context, q Querier, questionID string) (models.Question, error) {
	question, err := scanQuestion(q.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM question WHERE id = $1`, questionID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, ErrNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("query question: %w", err)
	}
	return question, nil
}

// ListQuestions returns every question, newest publish date first.
func ListQuestions(ctx context.Context, q Querier) ([]models.Question, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+questionColumns+` FROM question`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	// Sorted here rather than in SQL: SQLite keeps timestamps as text.
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].PubDate.After(questions[j].PubDate)
	})
	return questions, nil
}

// LatestPublished returns up to limit questions already published at now,
// newest first.
func LatestPublished(ctx context.Context, q Querier, now time.Time, limit int) ([]models.Question, error) {
	all, err := ListQuestions(ctx, q)
	if err != nil {
		return nil, err
	}

	published := make([]models.Question, 0, limit)
	for _, question := range all {
		if !IsPublished(question, now) {
			continue
		}
		published = append(published, question)
		if len(published) == limit {
			break
		}
	}
	return published, nil
}

// ListChoices returns a question's choices in creation order.
func ListChoices(ctx context.Context, q Querier, questionID string) ([]models.Choice, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, question_id, choice_text
		FROM choice
		WHERE question_id = $1
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("query choices: %w", err)
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.ChoiceText); err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

// GetChoice loads a choice only if it belongs to questionID.
func GetChoice(ctx context.Context, q Querier, questionID, choiceID string) (models.Choice, bool, error) {
	var c models.Choice
	err := q.QueryRowContext(ctx, `
		SELECT id, question_id, choice_text
		FROM choice
		WHERE id = $1 AND question_id = $2
	`, choiceID, questionID).Scan(&c.ID, &c.QuestionID, &c.ChoiceText)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Choice{}, false, nil
	}
	if err != nil {
		return models.Choice{}, false, fmt.Errorf("query choice: %w", err)
	}
	return c, true, nil
}

// GetUserVote finds the vote a user cast on a question, if any.
func GetUserVote(ctx context.Context, q Querier, userID, questionID string) (models.Vote, bool, error) {
	var v models.Vote
	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, question_id, choice_id, created_at, updated_at
		FROM vote
		WHERE user_id = $1 AND question_id = $2
	`, userID, questionID).Scan(&v.ID, &v.UserID, &v.QuestionID, &v.ChoiceID, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, false, nil
	}
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("query vote: %w", err)
	}
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return v, true, nil
}

// Results counts votes per choice of a question.
func Results(ctx context.Context, q Querier, questionID string) ([]models.ChoiceResult, int, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.question_id, c.choice_text, COUNT(v.id)
		FROM choice c
		LEFT JOIN vote v ON v.choice_id = c.id
		WHERE c.question_id = $1
		GROUP BY c.id, c.question_id, c.choice_text
		ORDER BY c.id
	`, questionID)
	if err != nil {
		return nil, 0, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []models.ChoiceResult{}
	total := 0
	for rows.Next() {
		var r models.ChoiceResult
		if err := rows.Scan(&r.ID, &r.QuestionID, &r.ChoiceText, &r.Votes); err != nil {
			return nil, 0, fmt.Errorf("scan result: %w", err)
		}
		total += r.Votes
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate results: %w", err)
	}
	return results, total, nil
}

// CreateQuestion inserts a question and its choices in one transaction.
func CreateQuestion(ctx context.Context, conn *sql.DB, text string, pubDate time.Time, endDate *time.Time, choiceTexts []string) (models.Question, []models.Choice, error) {
	if err := ValidateWindow(pubDate, endDate); err != nil {
		return models.Question{}, nil, err
	}

	question := models.Question{
		ID:           auth.NewID(),
		QuestionText: text,
		PubDate:      pubDate.UTC(),
	}
	if endDate != nil {
		end := endDate.UTC()
		question.EndDate = &end
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Question{}, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO question (id, question_text, pub_date, end_date)
		VALUES ($1, $2, $3, $4)
	`, question.ID, question.QuestionText, question.PubDate, question.EndDate)
	if err != nil {
		return models.Question{}, nil, fmt.Errorf("insert question: %w", err)
	}

	choices := make([]models.Choice, 0, len(choiceTexts))
	for _, text := range choiceTexts {
		choice, err := AddChoice(ctx, tx, question.ID, text)
		if err != nil {
			return models.Question{}, nil, err
		}
		choices = append(choices, choice)
	}

	if err := tx.Commit(); err != nil {
		return models.Question{}, nil, fmt.Errorf("commit question: %w", err)
	}
	return question, choices, nil
}

// AddChoice inserts a choice for an existing question.
func AddChoice(ctx context.Context, q Querier, questionID, text string) (models.Choice, error) {
	choice := models.Choice{
		ID:         auth.NewID(),
		QuestionID: questionID,
		ChoiceText: text,
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO choice (id, question_id, choice_text)
		VALUES ($1, $2, $3)
	`, choice.ID, choice.QuestionID, choice.ChoiceText)
	if err != nil {
		return models.Choice{}, fmt.Errorf("insert choice: %w", err)
	}
	return choice, nil
}

// DeleteQuestion removes a question; choices and votes go with it.
func DeleteQuestion(ctx context.Context, q Querier, questionID string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, questionID)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
