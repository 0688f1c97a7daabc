// Package identity is the client for the external identity API: primary
// credential validation, second-factor verification, and conversion of
// existing credentials into application-scoped access tokens. The API
// owns credential storage and the federation cookie; this client only
// consumes its contract.
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	signinPath  = "/1/user/signin.json"
	twoStepPath = "/1/user/twostep.json"
	convertPath = "/1/user/convert_access_token.json"
)

// User is the subset of the identity API's user document the broker
// reads.
type User struct {
	ID string `json:"_id"`
}

// TwoStep describes a second-factor requirement signalled by signin.
type TwoStep struct {
	Method string `json:"method"`
}

// AuthResponse is the successful result of any identity API call.
// SetCookies carries the raw Set-Cookie header values of the upstream
// response; the API refreshes the federation cookie on most calls and
// the broker relays it.
type AuthResponse struct {
	Token      string   `json:"token"`
	User       *User    `json:"user"`
	TwoStep    *TwoStep `json:"twostep"`
	SetCookies []string `json:"-"`
}

// SigninParams are the inputs to a primary credential exchange.
type SigninParams struct {
	Email             string
	Password          string
	ClientID          string
	ClientSecret      string
	FederationSession string
}

// TwoStepParams are the inputs to a second-factor verification.
type TwoStepParams struct {
	UserID            string
	Code              string
	ClientID          string
	ClientSecret      string
	FederationSession string
}

// ConvertParams are the inputs to a silent token conversion. Exactly one
// of AccessToken and FederationSession must be set. CreateSession asks
// the API to establish a new upstream session alongside the token.
type ConvertParams struct {
	AccessToken       string
	FederationSession string
	ClientID          string
	ClientSecret      string
	CreateSession     bool
}

// API is the calling surface of the identity client, extracted so tests
// can substitute a fake.
type API interface {
	Signin(ctx context.Context, params SigninParams) (*AuthResponse, error)
	VerifyTwoStep(ctx context.Context, params TwoStepParams) (*AuthResponse, error)
	ConvertToken(ctx context.Context, params ConvertParams) (*AuthResponse, error)
}

// Client talks to the identity API over form-encoded POST requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// ClientOption modifies a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (primarily for
// testing).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Signin exchanges primary credentials for an access token scoped to the
// given client. A twostep entry in the response means the account
// requires a second factor before any token is issued.
func (c *Client) Signin(ctx context.Context, params SigninParams) (*AuthResponse, error) {
	form := url.Values{}
	form.Set("client_id", params.ClientID)
	form.Set("client_secret", params.ClientSecret)
	form.Set("email", params.Email)
	form.Set("password", params.Password)
	if params.FederationSession != "" {
		form.Set("ci_session", params.FederationSession)
	}
	return c.post(ctx, signinPath, form)
}

// VerifyTwoStep completes a pending second-factor challenge.
func (c *Client) VerifyTwoStep(ctx context.Context, params TwoStepParams) (*AuthResponse, error) {
	form := url.Values{}
	form.Set("client_id", params.ClientID)
	form.Set("client_secret", params.ClientSecret)
	form.Set("user_id", params.UserID)
	form.Set("code", params.Code)
	if params.FederationSession != "" {
		form.Set("ci_session", params.FederationSession)
	}
	return c.post(ctx, twoStepPath, form)
}

// ConvertToken exchanges an existing access token or federation session
// for a token scoped to another application's client.
func (c *Client) ConvertToken(ctx context.Context, params ConvertParams) (*AuthResponse, error) {
	form := url.Values{}
	form.Set("client_id", params.ClientID)
	form.Set("client_secret", params.ClientSecret)
	if params.AccessToken != "" {
		form.Set("access_token", params.AccessToken)
	}
	if params.FederationSession != "" {
		form.Set("ci_session", params.FederationSession)
	}
	if params.CreateSession {
		form.Set("create_session", "true")
	}
	return c.post(ctx, convertPath, form)
}

type apiErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*AuthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.post] build %s request", path)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{StatusCode: 0, Message: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var body apiErrorBody
		_ = json.NewDecoder(res.Body).Decode(&body)
		message := body.Error
		if message == "" {
			message = http.StatusText(res.StatusCode)
		}
		return nil, &APIError{
			StatusCode: res.StatusCode,
			Code:       ErrorCode(body.Code),
			Message:    message,
		}
	}

	var auth AuthResponse
	if err := json.NewDecoder(res.Body).Decode(&auth); err != nil {
		return nil, errors.Wrapf(err, "[Client.post] decode %s response", path)
	}
	auth.SetCookies = res.Header.Values("Set-Cookie")
	return &auth, nil
}
