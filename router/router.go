// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/ku-polls/cliparse"
	"github.com/danielhkuo/ku-polls/handlers"
	"github.com/danielhkuo/ku-polls/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	questionHandler := handlers.NewQuestionHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	accountHandler := handlers.NewAccountHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Polls (public, session optional)
	mux.HandleFunc("GET /polls", middleware.WithLogging(questionHandler.Index))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(middleware.WithSession(cfg.SessionSecret, questionHandler.Detail)))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(questionHandler.Results))

	// Voting (login required)
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(middleware.RequireLogin(cfg.SessionSecret, votingHandler.Vote)))

	// Accounts
	mux.HandleFunc("POST /accounts/signup", middleware.WithLogging(accountHandler.Signup))
	mux.HandleFunc("POST /accounts/login", middleware.WithLogging(accountHandler.Login))
	mux.HandleFunc("POST /accounts/logout", middleware.WithLogging(middleware.WithSession(cfg.SessionSecret, accountHandler.Logout)))

	// Question management (requires X-Admin-Key)
	mux.HandleFunc("GET /admin/questions", middleware.WithLogging(adminHandler.ListQuestions))
	mux.HandleFunc("POST /admin/questions", middleware.WithLogging(adminHandler.CreateQuestion))
	mux.HandleFunc("POST /admin/questions/{id}/choices", middleware.WithLogging(adminHandler.AddChoice))
	mux.HandleFunc("DELETE /admin/questions/{id}", middleware.WithLogging(adminHandler.DeleteQuestion))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, handlers.IndexURL, http.StatusFound)
	})

	return mux
}
