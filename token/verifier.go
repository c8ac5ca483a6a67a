package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/eduhub/go-edu-client/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token type discriminator values carried in the "type" claim.
const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

// Claims is the verified payload of a platform token.
type Claims struct {
	UserID    string
	Name      string
	Email     string
	Role      users.RoleType
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	JTI       string
}

// Verifier validates platform tokens offline against the shared HMAC-SHA256
// secret agreed with the backend. It never contacts the server.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given shared secret.
func NewVerifier(secret []byte) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, EmptySigningSecretErr
	}
	return &Verifier{secret: secret}, nil
}

// Verify parses and validates a raw token. On any failure (malformed
// structure, signature mismatch, expiry, missing or unrecognised claims)
// it returns nil claims and an error describing the reason; it never
// panics. Claims must not be trusted unless Verify succeeded, even for
// tokens just received from the login endpoint.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	if err := CheckStructure(raw); err != nil {
		return nil, err
	}

	parsed, err := jwtlib.ParseWithClaims(raw, jwtlib.MapClaims{}, v.verificationKey,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", TokenExpiredErr, err)
		case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", SignatureInvalidErr, err)
		default:
			return nil, fmt.Errorf("%w: %v", MalformedTokenErr, err)
		}
	}
	if !parsed.Valid {
		return nil, SignatureInvalidErr
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", MalformedTokenErr)
	}
	return claimsFromMap(mapClaims)
}

// VerifyAccess verifies a token and additionally requires its "type" claim
// to be "access". Refresh tokens and untyped tokens are rejected.
func (v *Verifier) VerifyAccess(raw string) (*Claims, error) {
	claims, err := v.Verify(raw)
	if err != nil {
		return nil, err
	}
	if claims.Type != AccessTokenType {
		return nil, fmt.Errorf("%w: type %q", NotAccessTokenErr, claims.Type)
	}
	return claims, nil
}

func (v *Verifier) verificationKey(t *jwtlib.Token) (any, error) {
	if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return v.secret, nil
}

func claimsFromMap(mc jwtlib.MapClaims) (*Claims, error) {
	userID := stringClaim(mc, "user_id")
	email := stringClaim(mc, "email")
	roleStr := stringClaim(mc, "role")
	if userID == "" || email == "" || roleStr == "" {
		return nil, fmt.Errorf("%w: need user_id, email and role", MissingClaimsErr)
	}

	role, err := users.ParseRole(roleStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", UnknownRoleErr, err)
	}

	claims := &Claims{
		UserID: userID,
		Name:   stringClaim(mc, "name"),
		Email:  email,
		Role:   role,
		Type:   stringClaim(mc, "type"),
		JTI:    stringClaim(mc, "jti"),
	}

	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// stringClaim reads a claim as a string, tolerating numeric subject ids
// which some backends serialize as JSON numbers.
func stringClaim(mc jwtlib.MapClaims, key string) string {
	switch v := mc[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}
