// Package sessionrpc is the JSON-over-HTTP RPC client for the versioned
// session service. One deployment of the service exists per session
// version; the endpoint table in this package routes tokens to the
// deployment that issued them.
package sessionrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Caller is the calling surface of the session service client,
// extracted so tests can substitute a fake.
type Caller interface {
	Call(ctx context.Context, method string, args any, result any) error
}

// ServiceError is a remote failure reported by the session service.
// Calls are never retried at this layer; a single failure surfaces to
// the orchestrator.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("session service error (status %d): %s", e.StatusCode, e.Message)
}

// Client speaks the session service wire protocol: POST / with
// {"id", "name", "args"}, answered by {"result": ...} on success or a
// non-2xx status with {"error": message}.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

var _ Caller = (*Client)(nil)

// ClientOption modifies a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (primarily for
// testing).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(endpoint string, options ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args any    `json:"args,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// Call invokes one method on the session service. A nil result discards
// the response payload.
func (c *Client) Call(ctx context.Context, method string, args any, result any) error {
	body, err := json.Marshal(rpcRequest{
		ID:   uuid.New().String(),
		Name: method,
		Args: args,
	})
	if err != nil {
		return errors.Wrapf(err, "[Client.Call] marshal %q request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "[Client.Call] build %q request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &ServiceError{StatusCode: 0, Message: err.Error()}
	}
	defer res.Body.Close()

	var payload rpcResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&payload)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		message := payload.Error
		if message == "" {
			message = http.StatusText(res.StatusCode)
		}
		return &ServiceError{StatusCode: res.StatusCode, Message: message}
	}
	if decodeErr != nil {
		return errors.Wrapf(decodeErr, "[Client.Call] decode %q response", method)
	}
	if result == nil || payload.Result == nil {
		return nil
	}
	if err := json.Unmarshal(payload.Result, result); err != nil {
		return errors.Wrapf(err, "[Client.Call] unmarshal %q result", method)
	}
	return nil
}

// MethodInfo describes one method exposed by the session service.
type MethodInfo struct {
	Name string `json:"name"`
	Docs string `json:"docs,omitempty"`
}

// ListMethods asks the service to enumerate its methods. The health
// check uses it as a cheap connectivity probe.
func (c *Client) ListMethods(ctx context.Context) ([]MethodInfo, error) {
	var methods []MethodInfo
	if err := c.Call(ctx, "listMethods", nil, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}
