package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/appsuite/login-service/identity"
)

func TestSignin(t *testing.T) {
	t.Run("sends credentials as a form and decodes the response", func(t *testing.T) {
		var path string
		var form url.Values
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			require.NoError(t, r.ParseForm())
			form = r.PostForm
			w.Header().Add("Set-Cookie", "appsuite_ci_session=fed-1; Path=/")
			w.Write([]byte(`{"token": "access-1", "user": {"_id": "user-1"}}`))
		}))
		defer api.Close()

		auth, err := identity.NewClient(api.URL).Signin(context.Background(), identity.SigninParams{
			Email:             "a@b.test",
			Password:          "secret",
			ClientID:          "client-1",
			ClientSecret:      "secret-1",
			FederationSession: "fed-0",
		})
		require.NoError(t, err)

		require.Equal(t, "/1/user/signin.json", path)
		require.Equal(t, "a@b.test", form.Get("email"))
		require.Equal(t, "secret", form.Get("password"))
		require.Equal(t, "client-1", form.Get("client_id"))
		require.Equal(t, "secret-1", form.Get("client_secret"))
		require.Equal(t, "fed-0", form.Get("ci_session"))

		require.Equal(t, "access-1", auth.Token)
		require.Equal(t, "user-1", auth.User.ID)
		require.Nil(t, auth.TwoStep)
		require.Equal(t, []string{"appsuite_ci_session=fed-1; Path=/"}, auth.SetCookies)
	})

	t.Run("omits ci_session when the caller has none", func(t *testing.T) {
		var form url.Values
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			form = r.PostForm
			w.Write([]byte(`{"token": "access-1"}`))
		}))
		defer api.Close()

		_, err := identity.NewClient(api.URL).Signin(context.Background(), identity.SigninParams{
			Email: "a@b.test", Password: "secret",
		})
		require.NoError(t, err)
		require.False(t, form.Has("ci_session"))
	})

	t.Run("surfaces a twostep requirement", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"twostep": {"method": "sms"}, "user": {"_id": "user-1"}}`))
		}))
		defer api.Close()

		auth, err := identity.NewClient(api.URL).Signin(context.Background(), identity.SigninParams{})
		require.NoError(t, err)
		require.Empty(t, auth.Token)
		require.Equal(t, "sms", auth.TwoStep.Method)
	})

	t.Run("maps a coded failure to APIError", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "wrong password", "code": "invalid_credentials"}`))
		}))
		defer api.Close()

		_, err := identity.NewClient(api.URL).Signin(context.Background(), identity.SigninParams{})
		var apiErr *identity.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, identity.CodeInvalidCredentials, apiErr.Code)
		require.Equal(t, "wrong password", apiErr.Message)
	})
}

func TestVerifyTwoStep(t *testing.T) {
	var form url.Values
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/1/user/twostep.json", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"token": "access-2"}`))
	}))
	defer api.Close()

	auth, err := identity.NewClient(api.URL).VerifyTwoStep(context.Background(), identity.TwoStepParams{
		UserID:   "user-1",
		Code:     "123456",
		ClientID: "client-1",
	})
	require.NoError(t, err)
	require.Equal(t, "user-1", form.Get("user_id"))
	require.Equal(t, "123456", form.Get("code"))
	require.Equal(t, "access-2", auth.Token)
}

func TestConvertToken(t *testing.T) {
	t.Run("converts an access token and asks for a session", func(t *testing.T) {
		var form url.Values
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/1/user/convert_access_token.json", r.URL.Path)
			require.NoError(t, r.ParseForm())
			form = r.PostForm
			w.Write([]byte(`{"token": "converted-1", "user": {"_id": "user-1"}}`))
		}))
		defer api.Close()

		auth, err := identity.NewClient(api.URL).ConvertToken(context.Background(), identity.ConvertParams{
			AccessToken:   "access-1",
			ClientID:      "client-2",
			CreateSession: true,
		})
		require.NoError(t, err)
		require.Equal(t, "access-1", form.Get("access_token"))
		require.Equal(t, "true", form.Get("create_session"))
		require.False(t, form.Has("ci_session"))
		require.Equal(t, "converted-1", auth.Token)
	})

	t.Run("converts a federation session", func(t *testing.T) {
		var form url.Values
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			form = r.PostForm
			w.Write([]byte(`{"token": "converted-1"}`))
		}))
		defer api.Close()

		_, err := identity.NewClient(api.URL).ConvertToken(context.Background(), identity.ConvertParams{
			FederationSession: "fed-1",
		})
		require.NoError(t, err)
		require.Equal(t, "fed-1", form.Get("ci_session"))
		require.False(t, form.Has("access_token"))
		require.False(t, form.Has("create_session"))
	})
}

func TestErrorClassification(t *testing.T) {
	t.Run("no linked token", func(t *testing.T) {
		err := &identity.APIError{StatusCode: 400, Code: identity.CodeNoLinkedToken}
		require.True(t, identity.IsNoLinkedToken(err))
		require.False(t, identity.IsSessionExpired(err))
	})

	t.Run("invalid twostep code", func(t *testing.T) {
		err := &identity.APIError{StatusCode: 400, Code: identity.CodeInvalidTwoStepCode}
		require.True(t, identity.IsInvalidTwoStepCode(err))
	})

	t.Run("session expired by code", func(t *testing.T) {
		err := &identity.APIError{StatusCode: 400, Code: identity.CodeSessionExpired}
		require.True(t, identity.IsSessionExpired(err))
	})

	t.Run("session expired by legacy message", func(t *testing.T) {
		require.True(t, identity.IsSessionExpired(&identity.APIError{StatusCode: 401, Message: "session expired"}))
		require.True(t, identity.IsSessionExpired(&identity.APIError{StatusCode: 403, Message: "session expired"}))
		require.False(t, identity.IsSessionExpired(&identity.APIError{StatusCode: 401, Message: "nope"}))
		require.False(t, identity.IsSessionExpired(&identity.APIError{StatusCode: 500, Message: "session expired"}))
	})

	t.Run("wrapped errors still classify", func(t *testing.T) {
		err := errors.Wrap(&identity.APIError{Code: identity.CodeNoLinkedToken}, "context")
		require.True(t, identity.IsNoLinkedToken(err))
	})

	t.Run("unrelated errors do not classify", func(t *testing.T) {
		require.False(t, identity.IsNoLinkedToken(errors.New("boom")))
		require.False(t, identity.IsSessionExpired(nil))
	})
}
