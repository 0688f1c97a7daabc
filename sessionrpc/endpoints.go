package sessionrpc

import "github.com/pkg/errors"

// Version tags a deployment of the session service. New sessions are
// created against the configured default; existing sessions carry their
// own version inside the token so that store migrations do not strand
// them.
type Version string

const (
	// Version1 is the original session store, kept reachable until the
	// last tokens that reference it expire.
	Version1 Version = "1"
	// Version2 is the current session store.
	Version2 Version = "2"
)

// UnknownVersionErr is returned when a token references a session
// service deployment this build does not know about.
var UnknownVersionErr = errors.New("unknown session service version")

type endpointPair struct {
	production string
	local      string
}

// Endpoints are an explicit per-version table rather than string
// concatenation so that an unmapped version fails loudly instead of
// producing a malformed URL.
var endpoints = map[Version]endpointPair{
	Version1: {
		production: "http://session-service-1.appsuite",
		local:      "http://session-service-1",
	},
	Version2: {
		production: "http://session-service-2.appsuite",
		local:      "http://session-service-2",
	},
}

// EndpointFor resolves a session service version to its base URL.
func EndpointFor(version Version, production bool) (string, error) {
	pair, ok := endpoints[version]
	if !ok {
		return "", errors.Wrapf(UnknownVersionErr, "[EndpointFor] version %q", version)
	}
	if production {
		return pair.production, nil
	}
	return pair.local, nil
}

// ClientFor builds a client bound to the given session service version.
// Construction is cheap and performs no I/O, so callers build one per
// request without caching.
func ClientFor(version Version, production bool, options ...ClientOption) (*Client, error) {
	endpoint, err := EndpointFor(version, production)
	if err != nil {
		return nil, err
	}
	return NewClient(endpoint, options...), nil
}
