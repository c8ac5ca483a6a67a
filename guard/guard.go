// Package guard decides whether a session may see a protected view.
// It consumes session snapshots only; it never mutates auth state.
package guard

import (
	"net/http"

	"github.com/eduhub/go-edu-client/session"
	"github.com/eduhub/go-edu-client/users"
)

// Decision is the guard's verdict for a protected view.
type Decision int

const (
	// Allow renders the protected content.
	Allow Decision = iota
	// Loading renders a neutral loading state; the session is still
	// settling and a redirect now would be premature.
	Loading
	// RedirectLogin sends an unauthenticated visitor to the login view.
	RedirectLogin
	// RedirectUnauthorized sends an authenticated user whose role does
	// not match to the unauthorized view.
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	}
	return "unknown"
}

// Evaluate decides access for a view. An empty requiredRole means any
// authenticated user may enter.
func Evaluate(snap session.Snapshot, requiredRole users.RoleType) Decision {
	switch snap.State {
	case session.StateInitializing, session.StateRefreshing:
		return Loading
	}
	if !snap.IsAuthenticated {
		return RedirectLogin
	}
	if requiredRole != "" && (snap.User == nil || snap.User.Role != requiredRole) {
		return RedirectUnauthorized
	}
	return Allow
}

// SessionSource yields the current session snapshot. Implemented by
// session.Manager.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// Middleware gates an http.Handler behind the session, for shells that
// render views server-side. Loading answers 503 with Retry-After so the
// client tries again once the session has settled.
func Middleware(source SessionSource, requiredRole users.RoleType, loginURL, unauthorizedURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch Evaluate(source.Snapshot(), requiredRole) {
			case Allow:
				next.ServeHTTP(w, r)
			case Loading:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session initializing", http.StatusServiceUnavailable)
			case RedirectLogin:
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
			case RedirectUnauthorized:
				http.Redirect(w, r, unauthorizedURL, http.StatusSeeOther)
			}
		})
	}
}
