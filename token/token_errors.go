package token

import "errors"

var (
	MalformedTokenErr     = errors.New("malformed token structure")
	SignatureInvalidErr   = errors.New("token signature invalid")
	TokenExpiredErr       = errors.New("token expired")
	MissingClaimsErr      = errors.New("token missing required claims")
	UnknownRoleErr        = errors.New("token role not recognised")
	NotAccessTokenErr     = errors.New("token is not an access token")
	EmptySigningSecretErr = errors.New("signing secret is empty")
)
