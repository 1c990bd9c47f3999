// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ku-polls/cliparse"
	"github.com/danielhkuo/ku-polls/middleware"
	"github.com/danielhkuo/ku-polls/models"
	"github.com/danielhkuo/ku-polls/voting"
)

// IndexLimit is how many questions the index lists
const IndexLimit = 5

// IndexURL is where the client is sent after a rejected detail or vote
const IndexURL = "/polls"

type QuestionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time
}

func NewQuestionHandler(db *sql.DB, cfg cliparse.Config) *QuestionHandler {
	return &QuestionHandler{db: db, cfg: cfg, now: time.Now}
}

// Index handles GET /polls
func (h *QuestionHandler) Index(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	questions, err := voting.LatestPublished(r.Context(), h.db, now, IndexLimit)
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	summaries := make([]models.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		summaries = append(summaries, models.QuestionSummary{
			Question:             q,
			Published:            humanize.RelTime(q.PubDate, now, "ago", "from now"),
			CanVote:              voting.CanVote(q, now),
			WasPublishedRecently: voting.WasPublishedRecently(q, now),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.IndexResponse{
		LatestQuestionList: summaries,
	})
}

// Detail handles GET /polls/{id}
func (h *QuestionHandler) Detail(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	question, err := voting.GetQuestion(r.Context(), h.db, questionID)
	if errors.Is(err, voting.ErrNotFound) {
		middleware.RedirectError(w, http.StatusNotFound,
			fmt.Sprintf("Poll question %s does not exist.", questionID), IndexURL)
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !voting.CanVote(question, h.now()) {
		middleware.RedirectError(w, http.StatusForbidden,
			fmt.Sprintf("Poll question %s does not allow voting.", questionID), IndexURL)
		return
	}

	choices, err := voting.ListChoices(r.Context(), h.db, question.ID)
	if err != nil {
		slog.Error("failed to query choices", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := models.DetailResponse{
		Question: question,
		Choices:  choices,
	}

	// Anonymous visitors simply get no previous vote
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		vote, found, err := voting.GetUserVote(r.Context(), h.db, session.UserID, question.ID)
		if err != nil {
			slog.Error("failed to query previous vote", "error", err, "question_id", questionID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if found {
			resp.PrevVote = &vote
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Results handles GET /polls/{id}/results
func (h *QuestionHandler) Results(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	question, err := voting.GetQuestion(r.Context(), h.db, questionID)
	if errors.Is(err, voting.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Unpublished questions are hidden entirely
	if !voting.IsPublished(question, h.now()) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}

	results, total, err := voting.Results(r.Context(), h.db, question.ID)
	if err != nil {
		slog.Error("failed to compute results", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Question:   question,
		Results:    results,
		TotalVotes: total,
	})
}
