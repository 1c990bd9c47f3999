// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/ku-polls/models"
)

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// completedEntry returns the "request completed" record from captured logs.
func completedEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Bad log line %q: %v", scanner.Text(), err)
		}
		if entry["msg"] == "request completed" {
			return entry
		}
	}
	t.Fatal("No request completed log entry")
	return nil
}

func TestWithLogging_RecordsStatus(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "implicit 200 from Write",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			},
			status: http.StatusOK,
		},
		{
			name: "vote created",
			handler: func(w http.ResponseWriter, r *http.Request) {
				JSONResponse(w, http.StatusCreated, models.MessageResponse{Message: `You voted for "Yes".`})
			},
			status: http.StatusCreated,
		},
		{
			name: "login required",
			handler: func(w http.ResponseWriter, r *http.Request) {
				RedirectError(w, http.StatusUnauthorized, "Authentication required", LoginURL)
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "voting closed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				RedirectError(w, http.StatusForbidden, "Poll 7 is not available for voting.", "/polls")
			},
			status: http.StatusForbidden,
		},
		{
			name: "database error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ErrorResponse(w, http.StatusInternalServerError, "Database error")
			},
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)

			req := httptest.NewRequest("POST", "/polls/7/vote", nil)
			w := httptest.NewRecorder()
			WithLogging(tc.handler)(w, req)

			if w.Code != tc.status {
				t.Errorf("Expected response status %d, got %d", tc.status, w.Code)
			}

			entry := completedEntry(t, logs)
			// JSON numbers decode as float64
			if got, ok := entry["status"].(float64); !ok || int(got) != tc.status {
				t.Errorf("Expected logged status %d, got %v", tc.status, entry["status"])
			}
			if entry["path"] != "/polls/7/vote" || entry["method"] != "POST" {
				t.Errorf("Unexpected request fields in log: %v", entry)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusConflict, "vote conflict, please try again")

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}

	// Plain errors carry no redirect
	body := strings.TrimSpace(w.Body.String())
	want := `{"error":"Conflict","message":"vote conflict, please try again"}`
	if body != want {
		t.Errorf("Expected body %s, got %s", want, body)
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("vote request", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/7/vote", strings.NewReader(`{"choice_id":"c1"}`))
		var parsed models.VoteRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if parsed.ChoiceID != "c1" {
			t.Errorf("Expected choice_id c1, got %q", parsed.ChoiceID)
		}
	})

	// The vote handler treats an empty body as "no choice selected"
	t.Run("empty body is io.EOF", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/7/vote", nil)
		var parsed models.VoteRequest
		if err := ParseJSONBody(req, &parsed); !errors.Is(err, io.EOF) {
			t.Errorf("Expected io.EOF, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/polls/7/vote", strings.NewReader(`{choice_id`))
		var parsed models.VoteRequest
		err := ParseJSONBody(req, &parsed)
		if err == nil || errors.Is(err, io.EOF) {
			t.Errorf("Expected a syntax error, got %v", err)
		}
	})
}

func TestCORS(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	}))

	t.Run("preflight for admin request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/admin/questions", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.Len() != 0 {
			t.Errorf("Expected empty 200 preflight, got %d %q", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Expected origin to be echoed, got %q", got)
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Key") {
			t.Error("Expected X-Admin-Key in allowed headers")
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "DELETE") {
			t.Error("Expected DELETE in allowed methods")
		}
		// Session cookies need credentials
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("Expected credentials to be allowed")
		}
	})

	t.Run("regular request reaches handler", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/polls", nil))
		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected wildcard origin without an Origin header")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"first forwarded address", map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"}, "127.0.0.1:1234", "203.0.113.195"},
		{"real IP header", map[string]string{"X-Real-IP": "203.0.113.50"}, "10.0.0.1:1234", "203.0.113.50"},
		{"remote address without port", nil, "192.168.1.50:54321", "192.168.1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP %q, got %q", tc.expectedIP, got)
			}
		})
	}
}
