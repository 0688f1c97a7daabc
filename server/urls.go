package server

import "net/url"

// ServiceURL is the externally visible base URL of this login service.
// It always lives under the account application's hostname.
func ServiceURL(production bool) string {
	if production {
		return "https://account.appsuite.com"
	}
	return "https://account.local.appsuite.com"
}

// loginURL builds the credential entry URL, preserving the caller's
// deep-link redirect across the detour.
func loginURL(redirect string) string {
	if redirect == "" {
		return RouteLogin
	}
	return RouteLogin + "?redirect=" + url.QueryEscape(redirect)
}

// tfaURL builds the second-factor form URL, preserving redirect.
func tfaURL(redirect string) string {
	if redirect == "" {
		return RouteLoginTFA
	}
	return RouteLoginTFA + "?redirect=" + url.QueryEscape(redirect)
}

// destinationOr returns redirect when the caller supplied one, falling
// back to the suite root.
func destinationOr(redirect string) string {
	if redirect == "" {
		return "/"
	}
	return redirect
}
