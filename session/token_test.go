package session_test

import (
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/appsuite/login-service/session"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestDecodeVersion(t *testing.T) {
	t.Run("reads the version claim without verifying", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"sessionVersion": "2", "jti": "abc"})
		version, err := session.DecodeVersion(token)
		require.NoError(t, err)
		require.Equal(t, "2", version)
	})

	t.Run("token without the claim", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"jti": "abc"})
		_, err := session.DecodeVersion(token)
		require.ErrorIs(t, err, session.MissingVersionErr)
	})

	t.Run("non-string version claim", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"sessionVersion": 2})
		_, err := session.DecodeVersion(token)
		require.ErrorIs(t, err, session.MissingVersionErr)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := session.DecodeVersion("not-a-jwt")
		require.Error(t, err)
	})
}
