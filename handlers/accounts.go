// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/ku-polls/auth"
	"github.com/danielhkuo/ku-polls/cliparse"
	"github.com/danielhkuo/ku-polls/db"
	"github.com/danielhkuo/ku-polls/middleware"
	"github.com/danielhkuo/ku-polls/models"
)

type AccountHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	now func() time.Time
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg, now: time.Now}
}

// Signup handles POST /accounts/signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := auth.ValidateUsername(req.Username); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password1 != req.Password2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "The two password fields didn't match.")
		return
	}
	if err := auth.ValidatePassword(req.Password1); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password1)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	now := h.now().UTC()
	user := models.User{
		ID:           auth.NewID(),
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    now,
	}

	_, err = h.db.Exec(`
		INSERT INTO app_user (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "A user with that username already exists.")
			return
		}
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if !h.startSession(w, user, now) {
		return
	}

	slog.Info("user signed up", "user_id", user.ID, "username", user.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.AccountResponse{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "Your account has been created successfully!",
		Redirect: IndexURL,
	})
}

// Login handles POST /accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var user models.User
	err := h.db.QueryRow(`
		SELECT id, username, password_hash, created_at
		FROM app_user
		WHERE username = $1
	`, strings.TrimSpace(req.Username)).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Please enter a correct username and password.")
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		slog.Warn("failed login", "username", user.Username, "ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Please enter a correct username and password.")
		return
	}

	if !h.startSession(w, user, h.now()) {
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)

	// Honor ?next= from the login redirect, but only for local paths
	redirect := IndexURL
	if next := r.URL.Query().Get("next"); isLocalPath(next) {
		redirect = next
	}

	middleware.JSONResponse(w, http.StatusOK, models.AccountResponse{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "Logged in.",
		Redirect: redirect,
	})
}

// Logout handles POST /accounts/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		slog.Info("user logged out", "user_id", session.UserID)
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message:  "Logged out.",
		Redirect: middleware.LoginURL,
	})
}

func (h *AccountHandler) startSession(w http.ResponseWriter, user models.User, now time.Time) bool {
	token, err := auth.IssueSessionToken(user.ID, user.Username, h.cfg.SessionSecret, h.cfg.SessionTTL, now)
	if err != nil {
		slog.Error("failed to issue session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return false
	}
	middleware.SetSessionCookie(w, token, now.Add(h.cfg.SessionTTL))
	return true
}

// isLocalPath reports whether next is a path on this site. Browsers read
// "/\host" like "//host", so backslashes are refused outright.
func isLocalPath(next string) bool {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return false
	}
	u, err := url.Parse(next)
	return err == nil && u.Scheme == "" && u.Host == ""
}
