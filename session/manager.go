package session

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/appsuite/login-service/sessioncookie"
	"github.com/appsuite/login-service/sessionrpc"
)

// NoSessionErr is returned by operations that need an existing session
// cookie when the request carries none.
var NoSessionErr = errors.New("request carries no session cookie")

// ClientSelector builds an RPC client bound to one session service
// version. Extracted so tests can substitute a fake transport.
type ClientSelector func(version sessionrpc.Version) (sessionrpc.Caller, error)

// Manager owns the session lifecycle: remote record operations against
// the versioned session service paired with primary cookie handling.
// The ordering contract is create-then-cookie; a cookie is never written
// unless the remote record exists.
type Manager struct {
	codec          sessioncookie.Codec
	defaultVersion sessionrpc.Version
	clientFor      ClientSelector
}

// ManagerOption modifies a Manager during construction.
type ManagerOption func(*Manager)

// WithClientSelector substitutes the session service client factory
// (primarily for testing).
func WithClientSelector(selector ClientSelector) ManagerOption {
	return func(m *Manager) {
		m.clientFor = selector
	}
}

// NewManager builds a Manager. defaultVersion is used only when creating
// new sessions; existing sessions carry their own version in the token.
func NewManager(codec sessioncookie.Codec, defaultVersion sessionrpc.Version, production bool, options ...ManagerOption) *Manager {
	m := &Manager{
		codec:          codec,
		defaultVersion: defaultVersion,
		clientFor: func(version sessionrpc.Version) (sessionrpc.Caller, error) {
			return sessionrpc.ClientFor(version, production)
		},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Codec exposes the cookie codec the manager was built with, for callers
// that relay federation values.
func (m *Manager) Codec() sessioncookie.Codec {
	return m.codec
}

type createArgs struct {
	Session *Session `json:"session"`
}

type createResult struct {
	Token string `json:"token"`
}

type getArgs struct {
	Token   string   `json:"token"`
	Keys    []string `json:"keys"`
	Version string   `json:"sessionVersion"`
}

type updateArgs struct {
	Token   string   `json:"token"`
	Session *Session `json:"session"`
	Version string   `json:"sessionVersion"`
}

type destroyArgs struct {
	Token   string `json:"token"`
	Version string `json:"sessionVersion"`
}

// Create persists a new session record and, only once the remote call
// has succeeded, writes the primary cookie.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, sess *Session) (string, error) {
	if err := sess.Validate(); err != nil {
		return "", errors.Wrap(err, "[Manager.Create] invalid session")
	}
	client, err := m.clientFor(m.defaultVersion)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.Create] select client")
	}
	var result createResult
	if err := client.Call(ctx, "create", createArgs{Session: sess}, &result); err != nil {
		return "", errors.Wrap(err, "[Manager.Create] remote create")
	}
	m.codec.WritePrimary(w, result.Token)
	return result.Token, nil
}

// Get fetches the session record referenced by the request's cookie.
// A missing cookie is "no session", not an error. Remote failures
// propagate; callers route them as unauthenticated but keep the error
// for diagnostics.
func (m *Manager) Get(ctx context.Context, r *http.Request, keys ...string) (*Session, error) {
	token := m.codec.ReadPrimary(r)
	if token == "" {
		return nil, nil
	}
	if len(keys) == 0 {
		keys = []string{"*"}
	}
	version, err := DecodeVersion(token)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Get] decode token version")
	}
	client, err := m.clientFor(sessionrpc.Version(version))
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Get] select client")
	}
	sess := New()
	if err := client.Call(ctx, "get", getArgs{Token: token, Keys: keys, Version: version}, sess); err != nil {
		return nil, errors.Wrap(err, "[Manager.Get] remote get")
	}
	return sess, nil
}

// Update replaces the given entries of the existing session record.
// Conflict resolution is last-writer-wins, delegated to the session
// service.
func (m *Manager) Update(ctx context.Context, r *http.Request, sess *Session) (*Session, error) {
	if err := sess.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Manager.Update] invalid session")
	}
	token := m.codec.ReadPrimary(r)
	if token == "" {
		return nil, errors.Wrap(NoSessionErr, "[Manager.Update]")
	}
	version, err := DecodeVersion(token)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Update] decode token version")
	}
	client, err := m.clientFor(sessionrpc.Version(version))
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Update] select client")
	}
	updated := New()
	if err := client.Call(ctx, "update", updateArgs{Token: token, Session: sess, Version: version}, updated); err != nil {
		return nil, errors.Wrap(err, "[Manager.Update] remote update")
	}
	return updated, nil
}

// Destroy removes the remote record and clears both cookies. The cookies
// are cleared even when the record is already gone, so a second logout
// is a no-op rather than an error. Only an unreachable session service
// surfaces to the caller, and then only after the cookies have been
// cleared.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer func() {
		m.codec.ClearPrimary(w)
		m.codec.ClearFederation(w)
	}()

	token := m.codec.ReadPrimary(r)
	if token == "" {
		return nil
	}
	version, err := DecodeVersion(token)
	if err != nil {
		log.Warn().Err(err).Msg("destroying session with undecodable token, clearing cookies only")
		return nil
	}
	client, err := m.clientFor(sessionrpc.Version(version))
	if err != nil {
		log.Warn().Err(err).Str("version", version).Msg("destroying session with unknown version, clearing cookies only")
		return nil
	}
	if err := client.Call(ctx, "destroy", destroyArgs{Token: token, Version: version}, nil); err != nil {
		var serviceErr *sessionrpc.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.StatusCode >= 400 && serviceErr.StatusCode < 500 {
			// The record is already gone; the cleared cookies are the
			// outcome the caller asked for.
			log.Debug().Err(err).Msg("session already destroyed upstream")
			return nil
		}
		return errors.Wrap(err, "[Manager.Destroy] remote destroy")
	}
	return nil
}
