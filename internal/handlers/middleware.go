package handlers

import (
	"context"
	"net/http"

	"github.com/lanblog/apiserver/internal/sessions"
)

const sessionCookieName = "sessionid"

// SessionLoader resolves the session cookie and injects the session
// into the request context. Requests without a valid session pass
// through unauthenticated.
func SessionLoader(manager *sessions.Manager, codec *sessions.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID, err := codec.Parse(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := manager.Get(r.Context(), sessionID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), contextSessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that carry no authenticated session.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
