// Package rpcfakes provides an in-memory stand-in for the remote
// session service, used by manager and server tests.
package rpcfakes

import (
	"context"
	"encoding/json"
	"sync"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/appsuite/login-service/sessionrpc"
)

var _ sessionrpc.Caller = (*FakeSessionService)(nil)

// FakeSessionService stores session records in memory and mints real
// (HS256-signed) session tokens so that version decoding behaves as in
// production.
type FakeSessionService struct {
	version    string
	signingKey []byte
	lock       sync.Mutex
	records    map[string]json.RawMessage // token -> flat record
	calls      []string

	// FailNext, when set, makes the next call fail with the given
	// error and resets itself.
	FailNext error
}

func NewFakeSessionService(version string) *FakeSessionService {
	return &FakeSessionService{
		version:    version,
		signingKey: []byte("fake-session-service-key"),
		records:    make(map[string]json.RawMessage),
	}
}

// Calls lists the method names invoked so far, in order.
func (f *FakeSessionService) Calls() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.calls...)
}

// Record returns the stored flat record for a token.
func (f *FakeSessionService) Record(token string) (json.RawMessage, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	record, ok := f.records[token]
	return record, ok
}

type callArgs struct {
	Token   string          `json:"token"`
	Keys    []string        `json:"keys"`
	Session json.RawMessage `json:"session"`
}

func (f *FakeSessionService) Call(ctx context.Context, method string, args any, result any) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, method)

	if f.FailNext != nil {
		err := f.FailNext
		f.FailNext = nil
		return err
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return errors.Wrap(err, "fake session service: marshal args")
	}
	var parsed callArgs
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return errors.Wrap(err, "fake session service: unmarshal args")
	}

	switch method {
	case "create":
		token, err := f.mintToken()
		if err != nil {
			return err
		}
		f.records[token] = parsed.Session
		return writeResult(map[string]string{"token": token}, result)

	case "get":
		record, ok := f.records[parsed.Token]
		if !ok {
			return &sessionrpc.ServiceError{StatusCode: 404, Message: "session not found"}
		}
		return writeResult(record, result)

	case "update":
		record, ok := f.records[parsed.Token]
		if !ok {
			return &sessionrpc.ServiceError{StatusCode: 404, Message: "session not found"}
		}
		merged, err := mergeRecords(record, parsed.Session)
		if err != nil {
			return err
		}
		f.records[parsed.Token] = merged
		return writeResult(merged, result)

	case "destroy":
		if _, ok := f.records[parsed.Token]; !ok {
			return &sessionrpc.ServiceError{StatusCode: 400, Message: "token already destroyed"}
		}
		delete(f.records, parsed.Token)
		return nil

	case "listMethods":
		return writeResult([]sessionrpc.MethodInfo{
			{Name: "create"}, {Name: "get"}, {Name: "update"}, {Name: "destroy"},
		}, result)

	default:
		return &sessionrpc.ServiceError{StatusCode: 404, Message: "unknown method " + method}
	}
}

func (f *FakeSessionService) mintToken() (string, error) {
	claims := jwtlib.MapClaims{
		"sessionVersion": f.version,
		"jti":            uuid.New().String(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(f.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "fake session service: sign token")
	}
	return token, nil
}

// mergeRecords replaces the entries present in update, keeping the rest
// of the stored record (the real service's last-writer-wins merge).
func mergeRecords(stored, update json.RawMessage) (json.RawMessage, error) {
	var storedMap, updateMap map[string]json.RawMessage
	if err := json.Unmarshal(stored, &storedMap); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(update, &updateMap); err != nil {
		return nil, err
	}
	for key, value := range updateMap {
		storedMap[key] = value
	}
	return json.Marshal(storedMap)
}

func writeResult(value any, result any) error {
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}
