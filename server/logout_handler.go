package server

import (
	"net/http"
)

// LogoutHandler destroys the session and sends the caller to the
// credential form, preserving any redirect. Logging out twice is a
// no-op, not an error.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect := r.URL.Query().Get(redirectParam)
		if err := s.sessions.Destroy(r.Context(), w, r); err != nil {
			// Cookies are already cleared; only an unreachable session
			// service lands here.
			s.renderServiceError(w, err)
			return
		}
		http.Redirect(w, r, ServiceURL(s.production)+loginURL(redirect), http.StatusFound)
	}
}
