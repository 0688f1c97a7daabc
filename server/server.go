// Package server is the HTTP surface of the login service: the login
// orchestrator, second-factor step-up, logout, the health check, and the
// gated internal RPC endpoint.
package server

import (
	"net/http"

	"github.com/appsuite/login-service/appclient"
	"github.com/appsuite/login-service/identity"
	"github.com/appsuite/login-service/internal/config"
	"github.com/appsuite/login-service/server/rpc"
	"github.com/appsuite/login-service/session"
	"github.com/appsuite/login-service/sessioncookie"
	"github.com/appsuite/login-service/sessionrpc"
)

type Server struct {
	env        string
	production bool
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	codec      sessioncookie.Codec
	sessions   *session.Manager
	identity   identity.API
	resolver   appclient.Resolver
	dispatcher *rpc.Dispatcher
}

// Option modifies a Server during construction.
type Option func(*Server)

// WithIdentityAPI substitutes the identity API client (primarily for
// testing).
func WithIdentityAPI(api identity.API) Option {
	return func(s *Server) {
		s.identity = api
	}
}

// WithSessionManager substitutes the session lifecycle manager
// (primarily for testing).
func WithSessionManager(manager *session.Manager) Option {
	return func(s *Server) {
		s.sessions = manager
	}
}

func New(cfg config.Config, options ...Option) *Server {
	production := cfg.UseProductionServices()
	codec := sessioncookie.New(production)

	s := &Server{
		env:        cfg.GetEnv(),
		production: production,
		mux:        http.NewServeMux(),
		config:     cfg,
		codec:      codec,
		sessions:   session.NewManager(codec, sessionrpc.Version(cfg.GetSessionVersion()), production),
		identity:   identity.NewClient(cfg.GetIdentityAPIAddr()),
		resolver:   appclient.NewResolver(cfg),
	}
	for _, opt := range options {
		opt(s)
	}
	// The manager option may carry its own codec configuration; keep the
	// server's view consistent with it.
	s.codec = s.sessions.Codec()

	s.dispatcher = rpc.NewDispatcher(
		rpc.NewMethod("passwordReset", "reset the calling user's password", rpc.PasswordReset),
	)

	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoute(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}
