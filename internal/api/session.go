package api

import (
	"context"
	"net/http"

	"dashboard-go/internal/state"
)

const (
	SessionCookie = "dashboard_session"
	SessionHeader = "X-Session-ID"
)

type sessionKey struct{}

// Sessions attaches a session id to every request, issuing a cookie when the
// client has none.
func Sessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if !state.ValidSessionID(id) {
			id = ""
			if c, err := r.Cookie(SessionCookie); err == nil && state.ValidSessionID(c.Value) {
				id = c.Value
			}
		}
		if id == "" {
			id = state.NewSessionID()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

// SessionID returns the id attached by Sessions
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
