package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/appsuite/login-service/identity"
	"github.com/appsuite/login-service/session"
)

// TFAPageData contains data for rendering the second-factor page
type TFAPageData struct {
	Redirect string
	Error    string
}

// TFAPageHandler renders the second-factor form (GET /login/tfa). A
// caller without a pending challenge is sent back to credential entry;
// the challenge expired or was never started, which is not an error.
func (s *Server) TFAPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect := r.URL.Query().Get(redirectParam)
		sess := SessionFromContext(r.Context())
		if sess.PendingChallenge() == nil {
			http.Redirect(w, r, loginURL(redirect), http.StatusFound)
			return
		}
		s.renderTFAForm(w, TFAPageData{Redirect: redirect})
	}
}

// TFASubmitHandler completes a pending second-factor challenge
// (POST /login/tfa). Success clears the challenge and stores the
// destination application's token in the same update.
func (s *Server) TFASubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}
		redirect := r.FormValue(redirectParam)
		code := r.FormValue("code")

		sess := SessionFromContext(r.Context())
		if sess.PendingChallenge() == nil || sess.UserID() == "" {
			http.Redirect(w, r, loginURL(redirect), http.StatusFound)
			return
		}

		// Fail fast before spending a network call.
		if code == "" {
			s.renderTFAForm(w, TFAPageData{
				Redirect: redirect,
				Error:    "Verification code is required",
			})
			return
		}

		client := s.resolver.Resolve(redirect)
		res, err := s.identity.VerifyTwoStep(r.Context(), identity.TwoStepParams{
			UserID:            sess.UserID(),
			Code:              code,
			ClientID:          client.ID,
			ClientSecret:      client.Secret,
			FederationSession: s.codec.ReadFederation(r),
		})
		if err != nil {
			switch {
			case identity.IsSessionExpired(err):
				// The upstream challenge is gone; restart from
				// credential entry rather than re-prompting for a code
				// that can never verify.
				http.Redirect(w, r, loginURL(redirect), http.StatusFound)
			case identity.IsInvalidTwoStepCode(err):
				s.renderTFAForm(w, TFAPageData{
					Redirect: redirect,
					Error:    "Invalid verification code",
				})
			default:
				var apiErr *identity.APIError
				if asAPIError(err, &apiErr) {
					s.renderTFAForm(w, TFAPageData{
						Redirect: redirect,
						Error:    "Verification failed. Please try again.",
					})
					return
				}
				s.renderServiceError(w, err)
			}
			return
		}
		s.relayFederationCookie(w, res)

		// Replacing the global entry without a challenge clears it.
		update := session.New()
		update.Global = &session.Global{UserID: sess.UserID()}
		update.SetCredentials(client.Namespace, res.Token)
		if _, err := s.sessions.Update(r.Context(), r, update); err != nil {
			s.renderServiceError(w, err)
			return
		}
		http.Redirect(w, r, destinationOr(redirect), http.StatusFound)
	}
}

func (s *Server) renderTFAForm(w http.ResponseWriter, data TFAPageData) {
	tmpl, err := ParseTemplate("tfa.html")
	if err != nil {
		log.Err(err).Msg("failed to parse tfa template")
		http.Error(w, "failed to render verification page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("failed to render tfa template")
	}
}
