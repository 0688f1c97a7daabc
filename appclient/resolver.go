// Package appclient resolves the destination of a login redirect to the
// first-party application the caller is heading to, and returns that
// application's OAuth client credentials together with its namespace key
// within the session record.
package appclient

import (
	"net/url"
	"strings"

	"github.com/appsuite/login-service/internal/config"
	"github.com/appsuite/login-service/session"
)

// App identifies one first-party application of the suite.
type App string

const (
	AppAccount App = "account"
	AppPublish App = "publish"
	AppAnalyze App = "analyze"
)

// Client is one application's static credentials with the identity API,
// plus the session namespace its access tokens are stored under.
type Client struct {
	ID        string
	Secret    string
	Namespace session.Namespace
}

// Resolver maps redirect destinations to application clients. The
// classification is deliberately simple substring matching, not a
// router: a misclassification only stores the access token under the
// wrong namespace, recoverable by re-login.
type Resolver struct {
	clients map[App]Client
}

// NewResolver builds a Resolver from the configured client credentials.
// The account application has no registration of its own with the
// identity API and reuses the publish client under its own namespace.
func NewResolver(cfg config.IdentityConfig) Resolver {
	return Resolver{
		clients: map[App]Client{
			AppAccount: {
				ID:        cfg.GetPublishClientID(),
				Secret:    cfg.GetPublishClientSecret(),
				Namespace: session.NamespaceAccount,
			},
			AppPublish: {
				ID:        cfg.GetPublishClientID(),
				Secret:    cfg.GetPublishClientSecret(),
				Namespace: session.NamespacePublish,
			},
			AppAnalyze: {
				ID:        cfg.GetAnalyzeClientID(),
				Secret:    cfg.GetAnalyzeClientSecret(),
				Namespace: session.NamespaceAnalyze,
			},
		},
	}
}

// Resolve classifies a redirect destination and returns the matching
// application client. Absent or unclassifiable input resolves to the
// account application, never to an error.
func (r Resolver) Resolve(redirectURL string) Client {
	return r.clients[ParseApp(redirectURL)]
}

// ParseApp extracts the application identifier from a redirect URL's
// hostname.
func ParseApp(redirectURL string) App {
	if redirectURL == "" {
		return AppAccount
	}
	parsed, err := url.Parse(redirectURL)
	if err != nil {
		return AppAccount
	}
	host := parsed.Hostname()
	switch {
	case strings.Contains(host, string(AppPublish)):
		return AppPublish
	case strings.Contains(host, string(AppAnalyze)):
		return AppAnalyze
	default:
		return AppAccount
	}
}
