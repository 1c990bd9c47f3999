// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/danielhkuo/ku-polls/auth"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "sessionid"

// LoginURL is where unauthenticated users are sent
const LoginURL = "/accounts/login"

type contextKey string

const sessionKey contextKey = "session"

// SetSessionCookie stores the session token in an HttpOnly cookie
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFromContext returns the session attached by WithSession or RequireLogin
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(sessionKey).(auth.Session)
	return session, ok
}

// ContextWithSession attaches a session to ctx
func ContextWithSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func sessionFromRequest(r *http.Request, secret string) (auth.Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return auth.Session{}, false
	}
	session, err := auth.ParseSessionToken(cookie.Value, secret, time.Now())
	if err != nil {
		return auth.Session{}, false
	}
	return session, true
}

// WithSession attaches the session to the request context when the cookie
// is valid; anonymous requests pass through unchanged
func WithSession(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session, ok := sessionFromRequest(r, secret); ok {
			r = r.WithContext(ContextWithSession(r.Context(), session))
		}
		next(w, r)
	}
}

// RequireLogin rejects requests without a valid session, pointing the client
// at the login page with a next parameter
func RequireLogin(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessionFromRequest(r, secret)
		if !ok {
			RedirectError(w, http.StatusUnauthorized, "Authentication required",
				LoginURL+"?next="+url.QueryEscape(r.URL.Path))
			return
		}
		next(w, r.WithContext(ContextWithSession(r.Context(), session)))
	}
}
