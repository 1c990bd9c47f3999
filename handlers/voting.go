// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ku-polls/auth"
	"github.com/danielhkuo/ku-polls/cliparse"
	"github.com/danielhkuo/ku-polls/middleware"
	"github.com/danielhkuo/ku-polls/models"
	"github.com/danielhkuo/ku-polls/voting"
)

type VotingHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *voting.Engine
	now    func() time.Time
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{
		db:     db,
		cfg:    cfg,
		engine: voting.NewEngine(db, slog.Default()),
		now:    time.Now,
	}
}

// Vote handles POST /polls/{id}/vote. Must be wrapped in RequireLogin.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.RedirectError(w, http.StatusUnauthorized, "Authentication required", middleware.LoginURL)
		return
	}

	// An empty body is the same as not selecting a choice
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret)
	slog.Info("vote requested", "user", session.Username, "question_id", questionID, "ip_hash", ipHash)

	result, err := h.engine.SubmitVote(r.Context(), session.UserID, questionID, req.ChoiceID, h.now())
	switch {
	case errors.Is(err, voting.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	case errors.Is(err, voting.ErrVotingClosed):
		middleware.RedirectError(w, http.StatusForbidden,
			fmt.Sprintf("Poll %s is not available for voting.", questionID), IndexURL)
		return
	case errors.Is(err, voting.ErrInvalidChoice):
		slog.Warn("vote without a valid choice", "user", session.Username, "question_id", questionID, "ip_hash", ipHash)
		h.invalidChoice(w, r, questionID)
		return
	case errors.Is(err, voting.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	slog.Info("vote submitted",
		"user", session.Username,
		"question_id", questionID,
		"choice_id", result.Choice.ID,
		"status", result.Status,
		"ip_hash", ipHash,
	)

	status := http.StatusCreated
	if result.Status == models.VoteUpdated {
		status = http.StatusOK
	}

	middleware.JSONResponse(w, status, models.VoteResponse{
		Status:     result.Status,
		Choice:     result.Choice,
		Message:    fmt.Sprintf("You voted for %q.", result.Choice.ChoiceText),
		ResultsURL: fmt.Sprintf("/polls/%s/results", questionID),
	})
}

// invalidChoice echoes the question and its choices alongside the error
// so the client can re-render the form
func (h *VotingHandler) invalidChoice(w http.ResponseWriter, r *http.Request, questionID string) {
	question, err := voting.GetQuestion(r.Context(), h.db, questionID)
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	choices, err := voting.ListChoices(r.Context(), h.db, questionID)
	if err != nil {
		slog.Error("failed to query choices", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusBadRequest, models.InvalidChoiceResponse{
		Error:        http.StatusText(http.StatusBadRequest),
		ErrorMessage: "You didn't select a choice.",
		Question:     question,
		Choices:      choices,
	})
}
