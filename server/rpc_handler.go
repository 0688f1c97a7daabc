package server

import (
	"net/http"

	"github.com/appsuite/login-service/server/rpc"
	"github.com/appsuite/login-service/session"
)

// The internal RPC surface serves the publish application; capability
// discovery stays callable without a session.
const rpcRequiredNamespace = session.NamespacePublish

// RPCHandler gates and dispatches the internal RPC endpoint
// (POST /rpc).
func (s *Server) RPCHandler() http.HandlerFunc {
	gate := rpc.NewGate(rpcRequiredNamespace, func(r *http.Request) *session.Session {
		return SessionFromContext(r.Context())
	}, "methods")
	return gate.Wrap(s.dispatcher.Handler())
}
