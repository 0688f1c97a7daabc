// Package session defines the cross-application session record and the
// lifecycle manager that persists it through the versioned remote
// session service.
package session

import (
	"github.com/pkg/errors"
)

// Namespace is the key under which one application's access token is
// stored inside a session.
type Namespace string

const (
	NamespaceAccount Namespace = "account"
	NamespacePublish Namespace = "publish"
	NamespaceAnalyze Namespace = "analyze"
)

// Namespaces lists every known application namespace.
var Namespaces = []Namespace{NamespaceAccount, NamespacePublish, NamespaceAnalyze}

// ChallengeMethod is the delivery mechanism of a pending second-factor
// challenge.
type ChallengeMethod string

const (
	ChallengeMethodSMS ChallengeMethod = "sms"
	ChallengeMethodApp ChallengeMethod = "app"
)

// Challenge is the ephemeral second-factor state stored between primary
// credential success and second-factor success.
type Challenge struct {
	Method ChallengeMethod `json:"method"`
}

// Global holds the per-user entries shared by every application.
// UserID is immutable once the session has been created.
type Global struct {
	UserID string     `json:"userId,omitempty"`
	TFA    *Challenge `json:"tfa,omitempty"`
}

// Credentials is one application's entry within a session.
type Credentials struct {
	AccessToken string `json:"accessToken"`
}

// Session is the broker's view of the server-side session record. The
// record itself is owned by the remote session service; this struct only
// ever holds a transient copy during one request.
type Session struct {
	Global     *Global
	Namespaces map[Namespace]Credentials
}

var PendingChallengeErr = errors.New("session has a pending challenge and namespace credentials")

// New returns an empty session.
func New() *Session {
	return &Session{Namespaces: make(map[Namespace]Credentials)}
}

// Validate enforces the challenge invariant: a caller is either
// mid-challenge or authenticated, never both.
func (s *Session) Validate() error {
	if s.Global != nil && s.Global.TFA != nil && len(s.Namespaces) > 0 {
		return PendingChallengeErr
	}
	return nil
}

// UserID returns the global user id, or "" when the session has none.
func (s *Session) UserID() string {
	if s == nil || s.Global == nil {
		return ""
	}
	return s.Global.UserID
}

// PendingChallenge returns the second-factor challenge awaiting
// completion, or nil.
func (s *Session) PendingChallenge() *Challenge {
	if s == nil || s.Global == nil {
		return nil
	}
	return s.Global.TFA
}

// AnyAccessToken returns an access token from any application namespace.
// Which namespace wins when several are present is unspecified; every
// token identifies the same user to the identity API.
func (s *Session) AnyAccessToken() string {
	if s == nil {
		return ""
	}
	for _, ns := range Namespaces {
		if creds, ok := s.Namespaces[ns]; ok && creds.AccessToken != "" {
			return creds.AccessToken
		}
	}
	return ""
}

// HasNamespace reports whether the session carries credentials for the
// given application namespace.
func (s *Session) HasNamespace(ns Namespace) bool {
	if s == nil {
		return false
	}
	_, ok := s.Namespaces[ns]
	return ok
}

// SetCredentials replaces the namespace entry for one application.
func (s *Session) SetCredentials(ns Namespace, accessToken string) {
	if s.Namespaces == nil {
		s.Namespaces = make(map[Namespace]Credentials)
	}
	s.Namespaces[ns] = Credentials{AccessToken: accessToken}
}
