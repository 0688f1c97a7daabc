package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/appsuite/login-service/identity"
	"github.com/appsuite/login-service/session"
)

const (
	redirectParam = "redirect"
	// skipParam lets a caller opt out of silent re-authentication and
	// land on the credential form even while holding a usable token.
	skipParam = "skip"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Redirect string
	Error    string
	Email    string // Preserve email on error
}

// LoginPageHandler drives the entry decision for an authentication
// required request (GET /login), in priority order: silent conversion of
// an existing namespace token, federation cookie upgrade, credential
// form.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect := r.URL.Query().Get(redirectParam)
		skip := r.URL.Query().Get(skipParam) == "true"
		sess := SessionFromContext(r.Context())
		federation := s.codec.ReadFederation(r)

		if accessToken := sess.AnyAccessToken(); accessToken != "" && !skip {
			s.autoLoginWithAccessToken(w, r, accessToken, federation, redirect)
			return
		}
		if federation != "" && !skip {
			s.autoLoginWithFederation(w, r, federation, redirect)
			return
		}
		s.renderLoginForm(w, LoginPageData{Redirect: redirect})
	}
}

// autoLoginWithAccessToken exchanges a token the caller already holds
// for one scoped to the destination application. Any identity API error
// lands the caller on the credential form with a banner; silent failure
// would strand them.
func (s *Server) autoLoginWithAccessToken(w http.ResponseWriter, r *http.Request, accessToken, federation, redirect string) {
	client := s.resolver.Resolve(redirect)

	res, err := s.identity.ConvertToken(r.Context(), identity.ConvertParams{
		AccessToken:   accessToken,
		ClientID:      client.ID,
		ClientSecret:  client.Secret,
		CreateSession: federation == "",
	})
	if err != nil {
		var apiErr *identity.APIError
		if asAPIError(err, &apiErr) {
			log.Warn().Err(err).Msg("silent conversion rejected")
			s.renderLoginForm(w, LoginPageData{
				Redirect: redirect,
				Error:    "We could not sign you in automatically. Please sign in again.",
			})
			return
		}
		s.renderServiceError(w, err)
		return
	}
	s.relayFederationCookie(w, res)

	update := session.New()
	update.SetCredentials(client.Namespace, res.Token)
	if _, err := s.sessions.Update(r.Context(), r, update); err != nil {
		s.renderServiceError(w, err)
		return
	}
	http.Redirect(w, r, destinationOr(redirect), http.StatusFound)
}

// autoLoginWithFederation bootstraps a broker session from a sibling
// product's session cookie. No broker session existed before, so success
// also establishes the global user id.
func (s *Server) autoLoginWithFederation(w http.ResponseWriter, r *http.Request, federation, redirect string) {
	client := s.resolver.Resolve(redirect)

	res, err := s.identity.ConvertToken(r.Context(), identity.ConvertParams{
		FederationSession: federation,
		ClientID:          client.ID,
		ClientSecret:      client.Secret,
	})
	if err != nil {
		if identity.IsNoLinkedToken(err) {
			// A valid federation identity with no linked token is the
			// expected first-contact state, not a failure.
			s.renderLoginForm(w, LoginPageData{Redirect: redirect})
			return
		}
		var apiErr *identity.APIError
		if asAPIError(err, &apiErr) {
			log.Warn().Err(err).Msg("federation conversion rejected")
			s.renderLoginForm(w, LoginPageData{
				Redirect: redirect,
				Error:    "We could not sign you in automatically. Please sign in again.",
			})
			return
		}
		s.renderServiceError(w, err)
		return
	}
	s.relayFederationCookie(w, res)

	sess := session.New()
	sess.Global = &session.Global{}
	if res.User != nil {
		sess.Global.UserID = res.User.ID
	}
	sess.SetCredentials(client.Namespace, res.Token)
	if _, err := s.sessions.Create(r.Context(), w, sess); err != nil {
		s.renderServiceError(w, err)
		return
	}
	http.Redirect(w, r, destinationOr(redirect), http.StatusFound)
}

// LoginSubmitHandler processes the credential form (POST /login). A
// caller reaching this point is signing in for the first time anywhere
// in the suite, or re-authenticating after a failed silent path.
func (s *Server) LoginSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}
		redirect := r.FormValue(redirectParam)
		email := r.FormValue("email")
		password := r.FormValue("password")

		// Fail fast before spending a network call.
		if email == "" || password == "" {
			s.renderLoginForm(w, LoginPageData{
				Redirect: redirect,
				Error:    "Email and password are required",
				Email:    email,
			})
			return
		}

		client := s.resolver.Resolve(redirect)
		res, err := s.identity.Signin(r.Context(), identity.SigninParams{
			Email:             email,
			Password:          password,
			ClientID:          client.ID,
			ClientSecret:      client.Secret,
			FederationSession: s.codec.ReadFederation(r),
		})
		if err != nil {
			var apiErr *identity.APIError
			if asAPIError(err, &apiErr) {
				s.renderLoginForm(w, LoginPageData{
					Redirect: redirect,
					Error:    "Invalid email or password",
					Email:    email,
				})
				return
			}
			s.renderServiceError(w, err)
			return
		}
		s.relayFederationCookie(w, res)

		sess := session.New()
		sess.Global = &session.Global{}
		if res.User != nil {
			sess.Global.UserID = res.User.ID
		}
		if res.TwoStep != nil {
			// Mid-challenge sessions carry no namespace token until the
			// second factor succeeds.
			sess.Global.TFA = &session.Challenge{Method: session.ChallengeMethod(res.TwoStep.Method)}
		} else {
			sess.SetCredentials(client.Namespace, res.Token)
		}
		if _, err := s.sessions.Create(r.Context(), w, sess); err != nil {
			s.renderServiceError(w, err)
			return
		}

		if res.TwoStep != nil {
			http.Redirect(w, r, tfaURL(redirect), http.StatusFound)
			return
		}
		http.Redirect(w, r, destinationOr(redirect), http.StatusFound)
	}
}

func (s *Server) renderLoginForm(w http.ResponseWriter, data LoginPageData) {
	tmpl, err := ParseTemplate("login.html")
	if err != nil {
		log.Err(err).Msg("failed to parse login template")
		http.Error(w, "failed to render login page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("failed to render login template")
	}
}

// relayFederationCookie passes a refreshed federation value from an
// identity API response through onto the shared domain.
func (s *Server) relayFederationCookie(w http.ResponseWriter, res *identity.AuthResponse) {
	if value := s.codec.LongestFederationValue(res.SetCookies); value != "" {
		s.codec.WriteFederation(w, value)
	}
}
