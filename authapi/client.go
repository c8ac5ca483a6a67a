// Package authapi is the typed client for the platform's authentication
// endpoints. It speaks the wire contract only; session semantics (state,
// refresh serialization, error taxonomy) live in the session package.
package authapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/eduhub/go-edu-client/internal/apiutil"
	"github.com/eduhub/go-edu-client/users"
)

// Auth endpoint paths, relative to the API base URL.
const (
	LoginPath    = "/auth/login"
	RefreshPath  = "/auth/refresh"
	RegisterPath = "/auth/register"
	LogoutPath   = "/auth/logout"
)

// DefaultTimeout bounds every auth call so a dead backend surfaces as a
// timeout instead of hanging the caller indefinitely.
const DefaultTimeout = 10 * time.Second

// IsAuthPath reports whether a request path targets one of the auth
// endpoints. The HTTP interceptor must not inject bearer tokens into, or
// refresh-and-retry, these calls.
func IsAuthPath(path string) bool {
	// The API may be mounted under a prefix (e.g. /api/auth/login).
	return strings.Contains(path, "/auth/")
}

// Client calls the four auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	log        zerolog.Logger
}

// Option modifies a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The auth client must
// never be given a client whose transport injects bearer tokens.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the given API base URL (e.g. "http://localhost:5000/api").
func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("[authapi.New] baseURL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		validate:   validator.New(),
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the strict shape of a successful login. Every field is
// required; a 200 with a missing token or user record is rejected at the
// boundary.
type LoginResponse struct {
	AccessToken  string     `json:"accessToken" validate:"required"`
	RefreshToken string     `json:"refreshToken" validate:"required"`
	User         users.User `json:"user"`
}

// RefreshResponse is the strict shape of a successful token refresh.
type RefreshResponse struct {
	AccessToken string     `json:"accessToken" validate:"required"`
	User        users.User `json:"user"`
}

// RegisterRequest carries a new-account registration. Password rules match
// the backend's so obvious rejections never leave the client.
type RegisterRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=8"`
	Role     users.RoleType `json:"role" validate:"required,oneof=student teacher admin"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Login exchanges credentials for a token pair and the user record.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := loginRequest{Email: email, Password: password}
	if err := c.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid login input: %w", err)
	}

	var resp LoginResponse
	if err := c.post(ctx, LoginPath, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req := refreshRequest{RefreshToken: refreshToken}
	if err := c.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid refresh input: %w", err)
	}

	var resp RefreshResponse
	if err := c.post(ctx, RefreshPath, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. Registration success does not establish
// a session; the caller is expected to log in explicitly afterwards.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.validate.Struct(&req); err != nil {
		return fmt.Errorf("invalid registration input: %w", err)
	}
	return c.post(ctx, RegisterPath, &req, nil)
}

// Logout invalidates a refresh token server-side. Callers treat failures
// as best-effort; local state clearing never depends on this call.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.post(ctx, LogoutPath, &refreshRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	err := apiutil.DoJSON(ctx, c.httpClient, c.validate, http.MethodPost, c.baseURL+path, body, out)
	if err != nil {
		c.log.Debug().Err(err).Str("path", path).Msg("auth call failed")
	}
	return err
}
