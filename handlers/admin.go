// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/ku-polls/auth"
	"github.com/danielhkuo/ku-polls/cliparse"
	"github.com/danielhkuo/ku-polls/middleware"
	"github.com/danielhkuo/ku-polls/models"
	"github.com/danielhkuo/ku-polls/voting"
)

// AdminKeyHeader carries the operator key on admin requests
const AdminKeyHeader = "X-Admin-Key"

// MaxTextLength bounds question_text and choice_text, in characters
const MaxTextLength = 200

func tooLong(text string) bool {
	return utf8.RuneCountInString(text) > MaxTextLength
}

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg, now: time.Now}
}

func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	if err := auth.ValidateAdminKey(r.Header.Get(AdminKeyHeader), h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// ListQuestions handles GET /admin/questions
func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	questions, err := voting.ListQuestions(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	now := h.now()

	rows := []models.AdminQuestionRow{}
	for _, q := range questions {
		if search != "" && !strings.Contains(strings.ToLower(q.QuestionText), search) {
			continue
		}
		rows = append(rows, models.AdminQuestionRow{
			Question:             q,
			IsPublished:          voting.IsPublished(q, now),
			WasPublishedRecently: voting.WasPublishedRecently(q, now),
			CanVote:              voting.CanVote(q, now),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, rows)
}

// CreateQuestion handles POST /admin/questions
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var req models.CreateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.QuestionText = strings.TrimSpace(req.QuestionText)
	if req.QuestionText == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_text is required")
		return
	}
	if tooLong(req.QuestionText) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_text is too long")
		return
	}
	for _, text := range req.Choices {
		if strings.TrimSpace(text) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "choice_text cannot be empty")
			return
		}
		if tooLong(text) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "choice_text is too long")
			return
		}
	}

	pubDate := h.now()
	if req.PubDate != nil {
		pubDate = *req.PubDate
	}

	question, choices, err := voting.CreateQuestion(r.Context(), h.db, req.QuestionText, pubDate, req.EndDate, req.Choices)
	if errors.Is(err, voting.ErrInvalidWindow) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to create question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	slog.Info("question created", "question_id", question.ID, "choices", len(choices))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateQuestionResponse{
		Question: question,
		Choices:  choices,
	})
}

// AddChoice handles POST /admin/questions/{id}/choices
func (h *AdminHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	questionID := r.PathValue("id")

	var req models.AddChoiceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.ChoiceText = strings.TrimSpace(req.ChoiceText)
	if req.ChoiceText == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice_text is required")
		return
	}
	if tooLong(req.ChoiceText) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice_text is too long")
		return
	}

	if _, err := voting.GetQuestion(r.Context(), h.db, questionID); err != nil {
		if errors.Is(err, voting.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
			return
		}
		slog.Error("failed to query question", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	choice, err := voting.AddChoice(r.Context(), h.db, questionID, req.ChoiceText)
	if err != nil {
		slog.Error("failed to add choice", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add choice")
		return
	}

	slog.Info("choice added", "question_id", questionID, "choice_id", choice.ID)

	middleware.JSONResponse(w, http.StatusCreated, choice)
}

// DeleteQuestion handles DELETE /admin/questions/{id}
func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	questionID := r.PathValue("id")

	err := voting.DeleteQuestion(r.Context(), h.db, questionID)
	if errors.Is(err, voting.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete question", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete question")
		return
	}

	slog.Info("question deleted", "question_id", questionID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Question deleted",
	})
}
