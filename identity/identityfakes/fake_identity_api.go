// Package identityfakes provides a configurable stand-in for the
// external identity API.
package identityfakes

import (
	"context"
	"sync"

	"github.com/appsuite/login-service/identity"
)

var _ identity.API = (*FakeIdentityAPI)(nil)

// FakeIdentityAPI answers identity calls from function fields, recording
// the parameters of the last call of each kind. Unset functions answer
// with a minimal successful response.
type FakeIdentityAPI struct {
	SigninFn        func(params identity.SigninParams) (*identity.AuthResponse, error)
	VerifyTwoStepFn func(params identity.TwoStepParams) (*identity.AuthResponse, error)
	ConvertTokenFn  func(params identity.ConvertParams) (*identity.AuthResponse, error)

	lock        sync.Mutex
	LastSignin  *identity.SigninParams
	LastVerify  *identity.TwoStepParams
	LastConvert *identity.ConvertParams
}

func NewFakeIdentityAPI() *FakeIdentityAPI {
	return &FakeIdentityAPI{}
}

func (f *FakeIdentityAPI) Signin(_ context.Context, params identity.SigninParams) (*identity.AuthResponse, error) {
	f.lock.Lock()
	f.LastSignin = &params
	f.lock.Unlock()
	if f.SigninFn != nil {
		return f.SigninFn(params)
	}
	return &identity.AuthResponse{
		Token: "fake-access-token",
		User:  &identity.User{ID: "fake-user"},
	}, nil
}

func (f *FakeIdentityAPI) VerifyTwoStep(_ context.Context, params identity.TwoStepParams) (*identity.AuthResponse, error) {
	f.lock.Lock()
	f.LastVerify = &params
	f.lock.Unlock()
	if f.VerifyTwoStepFn != nil {
		return f.VerifyTwoStepFn(params)
	}
	return &identity.AuthResponse{Token: "fake-access-token"}, nil
}

func (f *FakeIdentityAPI) ConvertToken(_ context.Context, params identity.ConvertParams) (*identity.AuthResponse, error) {
	f.lock.Lock()
	f.LastConvert = &params
	f.lock.Unlock()
	if f.ConvertTokenFn != nil {
		return f.ConvertTokenFn(params)
	}
	return &identity.AuthResponse{
		Token: "fake-converted-token",
		User:  &identity.User{ID: "fake-user"},
	}, nil
}
