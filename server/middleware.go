package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/appsuite/login-service/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the remote session record for the request.
const ContextKeySession ContextKey = "session"

// SessionMiddleware resolves the caller's session record before the
// handler runs. A missing cookie leaves the request anonymous; a session
// service failure is surfaced, never silently downgraded to anonymous.
func (s *Server) SessionMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess, err := s.sessions.Get(r.Context(), r)
			if err != nil {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("session fetch failed")
				s.renderServiceError(w, err)
				return
			}
			if sess != nil {
				r = r.WithContext(context.WithValue(r.Context(), ContextKeySession, sess))
			}
			next(w, r)
		}
	}
}

// SessionFromContext returns the session attached by SessionMiddleware,
// or nil for an anonymous request.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ContextKeySession).(*session.Session)
	return sess
}
