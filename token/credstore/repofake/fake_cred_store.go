package credstorefake

import (
	"sync"

	"github.com/eduhub/go-edu-client/token"
	"github.com/eduhub/go-edu-client/token/credstore"
	"github.com/eduhub/go-edu-client/users"
)

var _ credstore.Store = (*FakeCredStore)(nil)

// FakeCredStore is an in-memory Store for tests. SaveErr, LoadErr and
// ClearErr can be set to force failures; SkipStructureCheck allows seeding
// deliberately corrupt tokens.
type FakeCredStore struct {
	SaveErr            error
	LoadErr            error
	ClearErr           error
	SkipStructureCheck bool

	creds credstore.Credentials
	saves int
	lock  sync.RWMutex
}

func NewFakeCredStore() *FakeCredStore {
	return &FakeCredStore{}
}

func (f *FakeCredStore) Save(accessToken, refreshToken string, user *users.User) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	if !f.SkipStructureCheck {
		if err := token.CheckStructure(accessToken); err != nil {
			return err
		}
		if err := token.CheckStructure(refreshToken); err != nil {
			return err
		}
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.creds = credstore.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}
	f.saves++
	return nil
}

func (f *FakeCredStore) Load() (*credstore.Credentials, error) {
	if f.LoadErr != nil {
		return nil, f.LoadErr
	}

	f.lock.RLock()
	defer f.lock.RUnlock()
	creds := f.creds
	return &creds, nil
}

func (f *FakeCredStore) Clear() error {
	if f.ClearErr != nil {
		return f.ClearErr
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	f.creds = credstore.Credentials{}
	return nil
}

// Seed stores credentials directly, bypassing the structural check.
func (f *FakeCredStore) Seed(accessToken, refreshToken string, user *users.User) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.creds = credstore.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}
}

// SaveCount reports how many successful saves have happened.
func (f *FakeCredStore) SaveCount() int {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.saves
}
