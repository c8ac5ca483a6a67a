// Package tokentest mints signed platform tokens for use in tests.
package tokentest

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eduhub/go-edu-client/token"
	"github.com/eduhub/go-edu-client/users"
)

// Option mutates the claim map before signing.
type Option func(jwtlib.MapClaims)

// WithType overrides the "type" claim.
func WithType(typ string) Option {
	return func(mc jwtlib.MapClaims) { mc["type"] = typ }
}

// WithExpiry overrides the "exp" claim.
func WithExpiry(exp time.Time) Option {
	return func(mc jwtlib.MapClaims) { mc["exp"] = exp.Unix() }
}

// WithoutClaim removes a claim entirely.
func WithoutClaim(key string) Option {
	return func(mc jwtlib.MapClaims) { delete(mc, key) }
}

// WithClaim sets an arbitrary claim value.
func WithClaim(key string, value any) Option {
	return func(mc jwtlib.MapClaims) { mc[key] = value }
}

// Mint signs an access token for the given user, valid for one hour.
func Mint(secret []byte, user users.User, opts ...Option) string {
	now := time.Now()
	claims := jwtlib.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    string(user.Role),
		"type":    token.AccessTokenType,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
		"jti":     uuid.New().String(),
	}
	for _, opt := range opts {
		opt(claims)
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// MintRefresh signs a refresh token for the given user, valid for 30 days.
func MintRefresh(secret []byte, user users.User, opts ...Option) string {
	merged := append([]Option{
		WithType(token.RefreshTokenType),
		WithExpiry(time.Now().Add(30 * 24 * time.Hour)),
	}, opts...)
	return Mint(secret, user, merged...)
}
