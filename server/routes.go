package server

import "net/http"

// Route path constants
const (
	RouteLogin       = "/login"
	RouteLoginTFA    = "/login/tfa"
	RouteLogout      = "/logout"
	RouteHealthCheck = "/health-check"
	RouteRPC         = "/rpc"
)

func (s *Server) initRoutes() {
	withSession := s.SessionMiddleware()

	s.registerRoute("GET "+RouteHealthCheck, s.HealthCheckHandler())

	s.registerRoute("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), withSession))
	s.registerRoute("POST "+RouteLogin, ChainMiddleware(s.LoginSubmitHandler(), withSession))
	s.registerRoute("GET "+RouteLoginTFA, ChainMiddleware(s.TFAPageHandler(), withSession))
	s.registerRoute("POST "+RouteLoginTFA, ChainMiddleware(s.TFASubmitHandler(), withSession))
	s.registerRoute("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), withSession))

	s.registerRoute("POST "+RouteRPC, ChainMiddleware(s.RPCHandler(), withSession))
}

// ChainMiddleware applies middleware around a handler, outermost first.
func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}
