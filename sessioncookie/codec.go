// Package sessioncookie reads and writes the two cookie artifacts the
// broker deals in: the primary session cookie, scoped to one deployment
// environment, and the legacy federation cookie shared across the whole
// suite domain.
package sessioncookie

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	primaryBaseName    = "suite_session"
	federationBaseName = "appsuite_ci_session"

	// The federation cookie always lives on the shared top-level domain,
	// whichever environment wrote it. Only its name is environment
	// prefixed, to keep non-production values from colliding with real
	// ones.
	sharedDomain = ".appsuite.com"

	cookieMaxAge = 365 * 24 * time.Hour
)

// Codec encodes the environment-dependent cookie naming and scoping
// rules. The zero value is the non-production codec.
type Codec struct {
	production bool
}

func New(production bool) Codec {
	return Codec{production: production}
}

// PrimaryName is the session cookie name for this environment.
func (c Codec) PrimaryName() string {
	if c.production {
		return primaryBaseName
	}
	return "local_" + primaryBaseName
}

// PrimaryDomain scopes the session cookie to this environment's
// deployment of the suite.
func (c Codec) PrimaryDomain() string {
	if c.production {
		return sharedDomain
	}
	return ".local" + sharedDomain
}

// FederationName is the federation cookie name for this environment.
func (c Codec) FederationName() string {
	if c.production {
		return federationBaseName
	}
	return "local" + federationBaseName
}

// ReadPrimary returns the session token from the request, or "" when the
// caller holds no session cookie.
func (c Codec) ReadPrimary(r *http.Request) string {
	return readCookie(r, c.PrimaryName())
}

// WritePrimary sets the session cookie. Callers must only invoke this
// after the remote session record exists.
func (c Codec) WritePrimary(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.PrimaryName(),
		Value:    token,
		Domain:   c.PrimaryDomain(),
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
	})
}

// ReadFederation returns the federation identifier from the request, or
// "" when absent.
func (c Codec) ReadFederation(r *http.Request) string {
	return readCookie(r, c.FederationName())
}

// WriteFederation relays a provider-issued federation value onto the
// shared domain. The broker never mints these values itself.
func (c Codec) WriteFederation(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.FederationName(),
		Value:    value,
		Domain:   sharedDomain,
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
	})
}

// ClearPrimary expires the session cookie.
func (c Codec) ClearPrimary(w http.ResponseWriter) {
	clearCookie(w, c.PrimaryName(), c.PrimaryDomain())
}

// ClearFederation expires the federation cookie. The broker does not own
// the cookie, but clearing it is the suite-wide sign-out signal.
func (c Codec) ClearFederation(w http.ResponseWriter) {
	clearCookie(w, c.FederationName(), sharedDomain)
}

// LongestFederationValue scans upstream Set-Cookie header values for the
// federation cookie and returns the decoded value carrying the most
// information. The identity API is known to emit the cookie more than
// once in a single response; empirically the longest decoded value is
// the complete one. The first maximum wins on equal lengths.
func (c Codec) LongestFederationValue(setCookieHeaders []string) string {
	var longest string
	for _, header := range setCookieHeaders {
		if header == "" {
			continue
		}
		if !strings.Contains(header, federationBaseName) {
			continue
		}
		attr := strings.SplitN(header, ";", 2)[0]
		parts := strings.SplitN(attr, "=", 2)
		if len(parts) != 2 {
			continue
		}
		value, err := url.QueryUnescape(strings.TrimSpace(parts[1]))
		if err != nil {
			value = strings.TrimSpace(parts[1])
		}
		if len(value) > len(longest) {
			longest = value
		}
	}
	return longest
}

func readCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

func clearCookie(w http.ResponseWriter, name, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Domain:   domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
	})
}
