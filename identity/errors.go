package identity

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode is the machine string the identity API attaches to a failed
// call. The mapping below is maintained alongside the API contract;
// codes not listed here are treated as the generic failure case rather
// than branched on.
type ErrorCode string

const (
	// CodeNoLinkedToken: the federation identity is valid but no access
	// token is linked to the requesting client. Expected during
	// first-time federation bootstrap, not a failure.
	CodeNoLinkedToken ErrorCode = "no_linked_access_token"
	// CodeInvalidTwoStepCode: the submitted second-factor code was wrong.
	CodeInvalidTwoStepCode ErrorCode = "invalid_twostep_code"
	// CodeSessionExpired: the upstream signin session backing a
	// second-factor challenge is gone; the caller must restart from
	// credential entry.
	CodeSessionExpired ErrorCode = "session_expired"
	// CodeInvalidCredentials: identifier/secret rejected.
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
)

// APIError is a failure reported by the identity API.
type APIError struct {
	StatusCode int
	Code       ErrorCode
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity api error (status %d, code %q): %s", e.StatusCode, e.Code, e.Message)
}

func hasCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// IsNoLinkedToken reports the expected federation-without-linked-token
// condition.
func IsNoLinkedToken(err error) bool {
	return hasCode(err, CodeNoLinkedToken)
}

// IsInvalidTwoStepCode reports a wrong second-factor code.
func IsInvalidTwoStepCode(err error) bool {
	return hasCode(err, CodeInvalidTwoStepCode)
}

// IsSessionExpired reports that the upstream challenge session is gone.
func IsSessionExpired(err error) bool {
	if hasCode(err, CodeSessionExpired) {
		return true
	}
	// Older API deployments signal expiry with a bare 401/403 carrying
	// the legacy message instead of a code.
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
		return apiErr.Message == "session expired"
	}
	return false
}
