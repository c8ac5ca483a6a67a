package apifakes

import (
	"context"
	"errors"
	"sync"

	"github.com/eduhub/go-edu-client/authapi"
	"github.com/eduhub/go-edu-client/session"
)

var _ session.AuthAPI = (*FakeAuthAPI)(nil)

// FakeAuthAPI is a programmable session.AuthAPI for tests. Each endpoint
// delegates to its Func field (erroring if unset) and counts calls.
type FakeAuthAPI struct {
	LoginFunc    func(ctx context.Context, email, password string) (*authapi.LoginResponse, error)
	RefreshFunc  func(ctx context.Context, refreshToken string) (*authapi.RefreshResponse, error)
	RegisterFunc func(ctx context.Context, req authapi.RegisterRequest) error
	LogoutFunc   func(ctx context.Context, refreshToken string) error

	lock          sync.Mutex
	loginCalls    int
	refreshCalls  int
	registerCalls int
	logoutCalls   int
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{}
}

func (f *FakeAuthAPI) Login(ctx context.Context, email, password string) (*authapi.LoginResponse, error) {
	f.lock.Lock()
	f.loginCalls++
	f.lock.Unlock()
	if f.LoginFunc == nil {
		return nil, errors.New("unexpected Login call")
	}
	return f.LoginFunc(ctx, email, password)
}

func (f *FakeAuthAPI) Refresh(ctx context.Context, refreshToken string) (*authapi.RefreshResponse, error) {
	f.lock.Lock()
	f.refreshCalls++
	f.lock.Unlock()
	if f.RefreshFunc == nil {
		return nil, errors.New("unexpected Refresh call")
	}
	return f.RefreshFunc(ctx, refreshToken)
}

func (f *FakeAuthAPI) Register(ctx context.Context, req authapi.RegisterRequest) error {
	f.lock.Lock()
	f.registerCalls++
	f.lock.Unlock()
	if f.RegisterFunc == nil {
		return errors.New("unexpected Register call")
	}
	return f.RegisterFunc(ctx, req)
}

func (f *FakeAuthAPI) Logout(ctx context.Context, refreshToken string) error {
	f.lock.Lock()
	f.logoutCalls++
	f.lock.Unlock()
	if f.LogoutFunc == nil {
		return nil
	}
	return f.LogoutFunc(ctx, refreshToken)
}

func (f *FakeAuthAPI) LoginCalls() int    { f.lock.Lock(); defer f.lock.Unlock(); return f.loginCalls }
func (f *FakeAuthAPI) RefreshCalls() int  { f.lock.Lock(); defer f.lock.Unlock(); return f.refreshCalls }
func (f *FakeAuthAPI) RegisterCalls() int { f.lock.Lock(); defer f.lock.Unlock(); return f.registerCalls }
func (f *FakeAuthAPI) LogoutCalls() int   { f.lock.Lock(); defer f.lock.Unlock(); return f.logoutCalls }
