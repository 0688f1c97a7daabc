package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/appsuite/login-service/identity"
)

// asAPIError reports whether err originated in the identity API and, if
// so, fills target. Anything else is a collaborator outage handled by
// renderServiceError.
func asAPIError(err error, target **identity.APIError) bool {
	return errors.As(err, target)
}

// renderServiceError answers for failures of the remote collaborators
// (session service, identity API outages). The caller keeps no partial
// state: cookies are only ever written after remote success, so a 500
// here leaves the previous session intact.
func (s *Server) renderServiceError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("service error")
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "cannot authenticate right now",
	})
}

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)
