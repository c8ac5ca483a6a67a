package session

import "errors"

// The session manager owns auth error classification; UI layers render
// these without interpreting raw HTTP statuses themselves.
var (
	// InvalidCredentialsErr is a login rejected by the server.
	InvalidCredentialsErr = errors.New("invalid email or password")
	// ServerUnreachableErr is a timeout or connection failure during an
	// auth call; callers may offer a retry.
	ServerUnreachableErr = errors.New("server unreachable")
	// SessionExpiredErr is refresh exhaustion: the refresh token is gone,
	// invalid, or the refresh call failed. Terminal for the session.
	SessionExpiredErr = errors.New("session expired")
	// TokenVerificationErr is a token failing structural, claim or
	// signature checks. Fatal for that token.
	TokenVerificationErr = errors.New("token failed verification")
	// ClaimsMismatchErr is a server-returned user record disagreeing with
	// the token claims. Treated as a security anomaly: the whole outcome
	// is rejected even though the HTTP call succeeded.
	ClaimsMismatchErr = errors.New("user record does not match token claims")
	// NotAuthenticatedErr is an operation that requires an authenticated
	// session.
	NotAuthenticatedErr = errors.New("not authenticated")
)
