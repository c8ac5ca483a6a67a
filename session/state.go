package session

import "github.com/eduhub/go-edu-client/users"

// State is the session manager's current position in its lifecycle.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateInitializing    State = "initializing"
	StateAuthenticated   State = "authenticated"
	StateRefreshing      State = "refreshing"
	StateLoggingOut      State = "logging_out"
)

func (s State) String() string { return string(s) }

// Snapshot is a point-in-time copy of the session state, safe to hold
// across the manager's own transitions.
type Snapshot struct {
	State State
	User  *users.User

	// IsAuthenticated is derived: a user record is present and the access
	// token has passed verification. It is never true for a token that
	// failed verification.
	IsAuthenticated bool

	// IsRefreshing reports an in-flight refresh. At most one refresh runs
	// at a time.
	IsRefreshing bool
}
