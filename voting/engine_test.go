// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/ku-polls/auth"
	"github.com/danielhkuo/ku-polls/db"
	"github.com/danielhkuo/ku-polls/models"
	"github.com/danielhkuo/ku-polls/testutil"
)

type fixture struct {
	conn       *sql.DB
	engine     *Engine
	userID     string
	questionID string
	choices    []string
}

// newFixture creates a question published two days ago with three choices
// and one registered user.
func newFixture(t *testing.T, endDate *time.Time) fixture {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	now := time.Now()
	questionID := testutil.CreateTestQuestion(t, conn, "What's up?", now.Add(-48*time.Hour), endDate)
	choices := []string{
		testutil.AddTestChoice(t, conn, questionID, "Not much"),
		testutil.AddTestChoice(t, conn, questionID, "The sky"),
		testutil.AddTestChoice(t, conn, questionID, "Just hacking again"),
	}

	return fixture{
		conn:       conn,
		engine:     NewEngine(conn, nil),
		userID:     testutil.CreateTestUser(t, conn, "voter", "s3cret-pass"),
		questionID: questionID,
		choices:    choices,
	}
}

func TestSubmitVote_CreateThenUpdate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.engine.SubmitVote(ctx, f.userID, f.questionID, f.choices[1], time.Now())
	if err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if res.Status != models.VoteCreated {
		t.Errorf("Expected status %q, got %q", models.VoteCreated, res.Status)
	}
	if res.Choice.ChoiceText != "The sky" {
		t.Errorf("Expected choice 'The sky', got %q", res.Choice.ChoiceText)
	}

	res, err = f.engine.SubmitVote(ctx, f.userID, f.questionID, f.choices[2], time.Now())
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if res.Status != models.VoteUpdated {
		t.Errorf("Expected status %q, got %q", models.VoteUpdated, res.Status)
	}

	if n := testutil.CountVotes(t, f.conn, f.userID, f.questionID); n != 1 {
		t.Fatalf("Expected exactly 1 vote row, got %d", n)
	}

	vote, found, err := GetUserVote(ctx, f.conn, f.userID, f.questionID)
	if err != nil || !found {
		t.Fatalf("GetUserVote: found=%v err=%v", found, err)
	}
	if vote.ChoiceID != f.choices[2] {
		t.Errorf("Expected vote to reference choice 3, got %s", vote.ChoiceID)
	}
	if vote.UpdatedAt.Before(vote.CreatedAt) {
		t.Errorf("updated_at %v is before created_at %v", vote.UpdatedAt, vote.CreatedAt)
	}
}

func TestSubmitVote_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.engine.SubmitVote(ctx, f.userID, f.questionID, f.choices[0], time.Now()); err != nil {
			t.Fatalf("vote %d failed: %v", i, err)
		}
	}

	if n := testutil.CountVotes(t, f.conn, f.userID, f.questionID); n != 1 {
		t.Errorf("Expected 1 vote row, got %d", n)
	}

	results, total, err := Results(ctx, f.conn, f.questionID)
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected total 1, got %d", total)
	}
	if results[0].Votes != 1 {
		t.Errorf("Expected 1 vote on first choice, got %d", results[0].Votes)
	}
}

func TestSubmitVote_Rejections(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)

	testCases := []struct {
		name      string
		endDate   *time.Time
		question  func(f fixture) string
		choice    func(t *testing.T, f fixture) string
		expectErr error
	}{
		{
			name:      "voting closed",
			endDate:   &yesterday,
			question:  func(f fixture) string { return f.questionID },
			choice:    func(t *testing.T, f fixture) string { return f.choices[0] },
			expectErr: ErrVotingClosed,
		},
		{
			name:     "choice from another question",
			question: func(f fixture) string { return f.questionID },
			choice: func(t *testing.T, f fixture) string {
				other := testutil.CreateTestQuestion(t, f.conn, "Other?", time.Now().Add(-time.Hour), nil)
				return testutil.AddTestChoice(t, f.conn, other, "Elsewhere")
			},
			expectErr: ErrInvalidChoice,
		},
		{
			name:      "empty choice",
			question:  func(f fixture) string { return f.questionID },
			choice:    func(t *testing.T, f fixture) string { return "  " },
			expectErr: ErrInvalidChoice,
		},
		{
			name:      "unknown choice",
			question:  func(f fixture) string { return f.questionID },
			choice:    func(t *testing.T, f fixture) string { return "no-such-choice" },
			expectErr: ErrInvalidChoice,
		},
		{
			name:      "unknown question",
			question:  func(f fixture) string { return "no-such-question" },
			choice:    func(t *testing.T, f fixture) string { return f.choices[0] },
			expectErr: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.endDate)

			_, err := f.engine.SubmitVote(context.Background(), f.userID, tc.question(f), tc.choice(t, f), time.Now())
			if !errors.Is(err, tc.expectErr) {
				t.Fatalf("Expected %v, got %v", tc.expectErr, err)
			}

			var total int
			if err := f.conn.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&total); err != nil {
				t.Fatalf("count votes: %v", err)
			}
			if total != 0 {
				t.Errorf("Expected no vote rows after rejection, got %d", total)
			}
		})
	}
}

func TestSubmitVote_ClosedKeepsExistingVote(t *testing.T) {
	end := time.Now().Add(time.Hour)
	f := newFixture(t, &end)
	ctx := context.Background()

	if _, err := f.engine.SubmitVote(ctx, f.userID, f.questionID, f.choices[0], time.Now()); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	// Same question, evaluated after it closes
	_, err := f.engine.SubmitVote(ctx, f.userID, f.questionID, f.choices[1], end.Add(time.Minute))
	if !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("Expected ErrVotingClosed, got %v", err)
	}

	vote, _, err := GetUserVote(ctx, f.conn, f.userID, f.questionID)
	if err != nil {
		t.Fatalf("GetUserVote: %v", err)
	}
	if vote.ChoiceID != f.choices[0] {
		t.Errorf("Closed question changed the stored vote to %s", vote.ChoiceID)
	}
}

func TestSubmitVote_NotYetPublished(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	questionID := testutil.CreateTestQuestion(t, conn, "Later?", time.Now().Add(24*time.Hour), nil)
	choiceID := testutil.AddTestChoice(t, conn, questionID, "Yes")
	userID := testutil.CreateTestUser(t, conn, "early", "s3cret-pass")

	_, err := NewEngine(conn, nil).SubmitVote(context.Background(), userID, questionID, choiceID, time.Now())
	if !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("Expected ErrVotingClosed, got %v", err)
	}
}

func TestSubmitVote_UsersAreIndependent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	other := testutil.CreateTestUser(t, f.conn, "other", "s3cret-pass")

	if _, err := f.engine.SubmitVote(ctx, f.userID, f.questionID, f.choices[0], time.Now()); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	res, err := f.engine.SubmitVote(ctx, other, f.questionID, f.choices[0], time.Now())
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if res.Status != models.VoteCreated {
		t.Errorf("Expected a second user's first vote to be created, got %q", res.Status)
	}

	_, total, err := Results(ctx, f.conn, f.questionID)
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 votes, got %d", total)
	}
}

func TestSubmitVote_Concurrent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	const numGoroutines = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	var errs []error

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			res, err := f.engine.SubmitVote(ctx, f.userID, f.questionID, f.choices[idx%len(f.choices)], time.Now())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if res.Status == models.VoteCreated {
				created++
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if !errors.Is(err, ErrConflict) {
			t.Errorf("Unexpected error from concurrent vote: %v", err)
		}
	}
	if created > 1 {
		t.Errorf("Expected at most one created vote, got %d", created)
	}
	if n := testutil.CountVotes(t, f.conn, f.userID, f.questionID); n != 1 {
		t.Errorf("Expected exactly 1 vote row after concurrent submissions, got %d", n)
	}
}

// uniqueViolation returns a real driver error for a duplicate key.
func uniqueViolation(t *testing.T, f fixture) error {
	t.Helper()
	_, err := f.conn.Exec(`
		INSERT INTO app_user (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, auth.NewID(), "voter", "hash", time.Now().UTC())
	if !db.IsUniqueViolation(err) {
		t.Fatalf("Expected a unique violation from a duplicate username, got %v", err)
	}
	return err
}

// A racing request by the same user commits its vote between our read and
// our insert. The retry must find that vote and move it.
func TestSubmitVote_RetriesAfterRacingInsert(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	conflict := uniqueViolation(t, f)

	// WAL lets a second connection commit while the upsert transaction is open
	var mode string
	if err := f.conn.QueryRow(`PRAGMA journal_mode=WAL`).Scan(&mode); err != nil || mode != "wal" {
		t.Fatalf("Failed to enable WAL: mode=%q err=%v", mode, err)
	}
	f.conn.SetMaxOpenConns(2)

	inserts := 0
	f.engine.insertVote = func(ctx context.Context, q Querier, vote models.Vote) error {
		inserts++
		if inserts == 1 {
			testutil.CastTestVote(t, f.conn, f.userID, f.questionID, f.choices[0])
			return fmt.Errorf("insert vote: %w", conflict)
		}
		return insertVote(ctx, q, vote)
	}

	res, err := f.engine.SubmitVote(ctx, f.userID, f.questionID, f.choices[2], time.Now())
	if err != nil {
		t.Fatalf("Expected the retry to succeed, got %v", err)
	}
	if res.Status != models.VoteUpdated {
		t.Errorf("Expected status %q after retry, got %q", models.VoteUpdated, res.Status)
	}
	if inserts != 1 {
		t.Errorf("Expected the retry to update instead of inserting, got %d inserts", inserts)
	}

	if n := testutil.CountVotes(t, f.conn, f.userID, f.questionID); n != 1 {
		t.Fatalf("Expected exactly 1 vote row, got %d", n)
	}
	vote, _, err := GetUserVote(ctx, f.conn, f.userID, f.questionID)
	if err != nil {
		t.Fatalf("GetUserVote: %v", err)
	}
	if vote.ChoiceID != f.choices[2] {
		t.Errorf("Expected vote to be moved to choice 3, got %s", vote.ChoiceID)
	}
}

func TestSubmitVote_ConflictTwice(t *testing.T) {
	f := newFixture(t, nil)
	conflict := uniqueViolation(t, f)

	inserts := 0
	f.engine.insertVote = func(ctx context.Context, q Querier, vote models.Vote) error {
		inserts++
		return fmt.Errorf("insert vote: %w", conflict)
	}

	_, err := f.engine.SubmitVote(context.Background(), f.userID, f.questionID, f.choices[0], time.Now())
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if inserts != upsertAttempts {
		t.Errorf("Expected %d insert attempts, got %d", upsertAttempts, inserts)
	}
	if n := testutil.CountVotes(t, f.conn, f.userID, f.questionID); n != 0 {
		t.Errorf("Expected no vote rows after conflicts, got %d", n)
	}
}

func TestSubmitVote_OtherInsertErrorsAreNotRetried(t *testing.T) {
	f := newFixture(t, nil)

	inserts := 0
	boom := errors.New("disk full")
	f.engine.insertVote = func(ctx context.Context, q Querier, vote models.Vote) error {
		inserts++
		return boom
	}

	_, err := f.engine.SubmitVote(context.Background(), f.userID, f.questionID, f.choices[0], time.Now())
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the insert error, got %v", err)
	}
	if inserts != 1 {
		t.Errorf("Expected a single attempt, got %d", inserts)
	}
}
