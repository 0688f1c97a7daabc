package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/appsuite/login-service/session"
	"github.com/appsuite/login-service/sessioncookie"
	"github.com/appsuite/login-service/sessionrpc"
	"github.com/appsuite/login-service/sessionrpc/rpcfakes"
)

func newTestManager(fake *rpcfakes.FakeSessionService) (*session.Manager, *[]sessionrpc.Version) {
	var requested []sessionrpc.Version
	manager := session.NewManager(sessioncookie.New(false), sessionrpc.Version2, false,
		session.WithClientSelector(func(version sessionrpc.Version) (sessionrpc.Caller, error) {
			requested = append(requested, version)
			if _, err := sessionrpc.EndpointFor(version, false); err != nil {
				return nil, err
			}
			return fake, nil
		}))
	return manager, &requested
}

func authenticatedSession(userID string) *session.Session {
	sess := session.New()
	sess.Global = &session.Global{UserID: userID}
	sess.SetCredentials(session.NamespacePublish, "publish-token")
	return sess
}

func requestWithToken(codec sessioncookie.Codec, token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: codec.PrimaryName(), Value: token})
	}
	return r
}

func TestManagerCreate(t *testing.T) {
	codec := sessioncookie.New(false)

	t.Run("writes the cookie only after the remote record exists", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)
		w := httptest.NewRecorder()

		token, err := manager.Create(context.Background(), w, authenticatedSession("user-1"))
		require.NoError(t, err)
		require.NotEmpty(t, token)

		_, stored := fake.Record(token)
		require.True(t, stored)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, codec.PrimaryName(), cookies[0].Name)
		require.Equal(t, token, cookies[0].Value)
		require.Equal(t, codec.PrimaryDomain(), cookies[0].Domain)
		require.True(t, cookies[0].HttpOnly)
	})

	t.Run("remote failure leaves no cookie behind", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		fake.FailNext = &sessionrpc.ServiceError{StatusCode: 500, Message: "boom"}
		manager, _ := newTestManager(fake)
		w := httptest.NewRecorder()

		_, err := manager.Create(context.Background(), w, authenticatedSession("user-1"))
		require.Error(t, err)
		require.Empty(t, w.Result().Cookies())
	})

	t.Run("rejects a session with challenge and credentials", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)

		sess := authenticatedSession("user-1")
		sess.Global.TFA = &session.Challenge{Method: session.ChallengeMethodSMS}
		_, err := manager.Create(context.Background(), httptest.NewRecorder(), sess)
		require.ErrorIs(t, err, session.PendingChallengeErr)
		require.Empty(t, fake.Calls())
	})
}

func TestManagerGet(t *testing.T) {
	codec := sessioncookie.New(false)

	t.Run("no cookie means no session, not an error", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)

		sess, err := manager.Get(context.Background(), requestWithToken(codec, ""))
		require.NoError(t, err)
		require.Nil(t, sess)
		require.Empty(t, fake.Calls())
	})

	t.Run("fetches the record the cookie references", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)
		token, err := manager.Create(context.Background(), httptest.NewRecorder(), authenticatedSession("user-1"))
		require.NoError(t, err)

		sess, err := manager.Get(context.Background(), requestWithToken(codec, token))
		require.NoError(t, err)
		require.Equal(t, "user-1", sess.UserID())
		require.True(t, sess.HasNamespace(session.NamespacePublish))
	})

	t.Run("routes by the version inside the token", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("1")
		manager, requested := newTestManager(fake)

		token, err := manager.Create(context.Background(), httptest.NewRecorder(), authenticatedSession("user-1"))
		require.NoError(t, err)

		_, err = manager.Get(context.Background(), requestWithToken(codec, token))
		require.NoError(t, err)

		// Create uses the configured default; the follow-up get must use
		// the version minted into the token instead.
		require.Equal(t, []sessionrpc.Version{sessionrpc.Version2, sessionrpc.Version1}, *requested)
	})

	t.Run("undecodable token surfaces an error", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)

		_, err := manager.Get(context.Background(), requestWithToken(codec, "garbage"))
		require.Error(t, err)
		require.Empty(t, fake.Calls())
	})
}

func TestManagerUpdate(t *testing.T) {
	codec := sessioncookie.New(false)

	t.Run("requires an existing session cookie", func(t *testing.T) {
		manager, _ := newTestManager(rpcfakes.NewFakeSessionService("2"))

		update := session.New()
		update.SetCredentials(session.NamespaceAnalyze, "analyze-token")
		_, err := manager.Update(context.Background(), requestWithToken(codec, ""), update)
		require.ErrorIs(t, err, session.NoSessionErr)
	})

	t.Run("merges entries into the stored record", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)
		token, err := manager.Create(context.Background(), httptest.NewRecorder(), authenticatedSession("user-1"))
		require.NoError(t, err)

		update := session.New()
		update.SetCredentials(session.NamespaceAnalyze, "analyze-token")
		updated, err := manager.Update(context.Background(), requestWithToken(codec, token), update)
		require.NoError(t, err)

		require.Equal(t, "user-1", updated.UserID())
		require.True(t, updated.HasNamespace(session.NamespacePublish))
		require.Equal(t, "analyze-token", updated.Namespaces[session.NamespaceAnalyze].AccessToken)
	})
}

func TestManagerDestroy(t *testing.T) {
	codec := sessioncookie.New(false)

	clearedNames := func(w *httptest.ResponseRecorder) []string {
		var names []string
		for _, cookie := range w.Result().Cookies() {
			if cookie.MaxAge < 0 && cookie.Value == "" {
				names = append(names, cookie.Name)
			}
		}
		return names
	}

	t.Run("no cookie is a no-op that still clears cookies", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)
		w := httptest.NewRecorder()

		require.NoError(t, manager.Destroy(context.Background(), w, requestWithToken(codec, "")))
		require.Empty(t, fake.Calls())
		require.ElementsMatch(t, []string{codec.PrimaryName(), codec.FederationName()}, clearedNames(w))
	})

	t.Run("removes the record and clears both cookies", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)
		token, err := manager.Create(context.Background(), httptest.NewRecorder(), authenticatedSession("user-1"))
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, manager.Destroy(context.Background(), w, requestWithToken(codec, token)))

		_, stored := fake.Record(token)
		require.False(t, stored)
		require.ElementsMatch(t, []string{codec.PrimaryName(), codec.FederationName()}, clearedNames(w))

		sess, err := manager.Get(context.Background(), requestWithToken(codec, ""))
		require.NoError(t, err)
		require.Nil(t, sess)
	})

	t.Run("destroying an already destroyed session succeeds", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)
		token, err := manager.Create(context.Background(), httptest.NewRecorder(), authenticatedSession("user-1"))
		require.NoError(t, err)

		require.NoError(t, manager.Destroy(context.Background(), httptest.NewRecorder(), requestWithToken(codec, token)))
		require.NoError(t, manager.Destroy(context.Background(), httptest.NewRecorder(), requestWithToken(codec, token)))
	})

	t.Run("undecodable token clears cookies without a remote call", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)
		w := httptest.NewRecorder()

		require.NoError(t, manager.Destroy(context.Background(), w, requestWithToken(codec, "garbage")))
		require.Empty(t, fake.Calls())
		require.Len(t, clearedNames(w), 2)
	})

	t.Run("unreachable service surfaces after clearing cookies", func(t *testing.T) {
		fake := rpcfakes.NewFakeSessionService("2")
		manager, _ := newTestManager(fake)
		token, err := manager.Create(context.Background(), httptest.NewRecorder(), authenticatedSession("user-1"))
		require.NoError(t, err)

		fake.FailNext = errors.New("connection refused")
		w := httptest.NewRecorder()
		err = manager.Destroy(context.Background(), w, requestWithToken(codec, token))
		require.Error(t, err)
		require.Len(t, clearedNames(w), 2)
	})
}

func TestManagerCodec(t *testing.T) {
	manager, _ := newTestManager(rpcfakes.NewFakeSessionService("2"))
	require.True(t, strings.HasPrefix(manager.Codec().PrimaryName(), "local_"))
}
