package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/appsuite/login-service/session"
)

// SessionLookup resolves the caller's session record for a request, or
// nil when anonymous.
type SessionLookup func(r *http.Request) *session.Session

// Gate authorizes RPC requests before dispatch. A request is admitted
// when the caller's session holds an access token under the required
// namespace, or when the requested method name is on the allow-list of
// methods safe to call anonymously.
type Gate struct {
	required  session.Namespace
	sessionOf SessionLookup
	allowed   map[string]struct{}
}

func NewGate(required session.Namespace, sessionOf SessionLookup, allowed ...string) *Gate {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = struct{}{}
	}
	return &Gate{required: required, sessionOf: sessionOf, allowed: allowedSet}
}

// Wrap applies the gate in front of a dispatch handler. The request body
// is consumed to read the method name and restored before dispatch.
func (g *Gate) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable rpc request")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed rpc request")
			return
		}

		if _, ok := g.allowed[req.Name]; !ok {
			if !g.sessionOf(r).HasNamespace(g.required) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
		}
		next(w, r)
	}
}
