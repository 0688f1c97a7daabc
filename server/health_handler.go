package server

import (
	"encoding/json"
	"net/http"

	"github.com/appsuite/login-service/sessionrpc"
)

// HealthCheckHandler probes the session service deployment that new
// sessions would be created against.
func (s *Server) HealthCheckHandler() http.HandlerFunc {
	version := sessionrpc.Version(s.config.GetSessionVersion())
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)

		client, err := sessionrpc.ClientFor(version, s.production)
		if err == nil {
			_, err = client.ListMethods(r.Context())
		}
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "cannot connect to session service"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
