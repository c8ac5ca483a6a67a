// Package credstore is the single place that touches durable credential
// storage. Everything else holds credentials in memory only.
package credstore

import (
	"github.com/eduhub/go-edu-client/users"
)

// Credentials is the persisted copy of the session: both tokens plus the
// cached user profile. All three are invalidated together on logout.
type Credentials struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *users.User `json:"user,omitempty"`
}

// Empty reports whether no credentials are present.
func (c *Credentials) Empty() bool {
	return c == nil || (c.AccessToken == "" && c.RefreshToken == "" && c.User == nil)
}

// Store persists credentials across process restarts. Save must reject
// tokens that fail the structural check before they reach durable storage.
// Load of an absent store returns empty credentials, not an error.
type Store interface {
	Save(accessToken, refreshToken string, user *users.User) error
	Load() (*Credentials, error)
	Clear() error
}
