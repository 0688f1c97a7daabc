package session

import (
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// The session token is an opaque signed string issued by the session
// service. The broker never verifies it; only the service holds the
// signing key. The one claim the broker is allowed to read locally is
// sessionVersion, which routes the token back to the service deployment
// that issued it. Everything else is only trustworthy after a remote get.

const versionClaim = "sessionVersion"

var MissingVersionErr = errors.New("session token carries no version")

// DecodeVersion extracts the sessionVersion claim without signature
// verification.
func DecodeVersion(token string) (string, error) {
	unverified, _, err := jwtlib.NewParser().ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return "", errors.Wrap(err, "[DecodeVersion] parse token")
	}
	claims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", errors.New("[DecodeVersion] error extracting claims")
	}
	version, _ := claims[versionClaim].(string)
	if version == "" {
		return "", MissingVersionErr
	}
	return version, nil
}
