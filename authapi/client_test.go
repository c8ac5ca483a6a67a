package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eduhub/go-edu-client/authapi"
	"github.com/eduhub/go-edu-client/internal/apiutil"
	"github.com/eduhub/go-edu-client/users"
)

func TestIsAuthPath(t *testing.T) {
	require.True(t, authapi.IsAuthPath("/auth/login"))
	require.True(t, authapi.IsAuthPath("/api/auth/refresh"))
	require.False(t, authapi.IsAuthPath("/material/"))
	require.False(t, authapi.IsAuthPath("/progress/summary/jane@example.com"))
}

func TestLogin_DecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "john.doe@example.com", body["email"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "header123.payload456.signature789",
			"refreshToken": "header123.payload456.signature000",
			"user": map[string]string{
				"id": "user-1", "name": "John Doe",
				"email": "john.doe@example.com", "role": "student",
			},
		})
	}))
	defer srv.Close()

	c, err := authapi.New(srv.URL + "/api")
	require.NoError(t, err)

	resp, err := c.Login(context.Background(), "john.doe@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "header123.payload456.signature789", resp.AccessToken)
	require.Equal(t, users.RoleStudent, resp.User.Role)
}

func TestLogin_ServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
	}))
	defer srv.Close()

	c, err := authapi.New(srv.URL + "/api")
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "john.doe@example.com", "wrong-password")
	require.True(t, apiutil.IsStatus(err, http.StatusUnauthorized))
	require.Contains(t, err.Error(), "Invalid email or password")
	require.False(t, apiutil.IsTransient(err))
}

func TestLogin_RejectsIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 but no refreshToken: must be rejected at the boundary.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "header123.payload456.signature789",
			"user": map[string]string{
				"id": "user-1", "name": "John Doe",
				"email": "john.doe@example.com", "role": "student",
			},
		})
	}))
	defer srv.Close()

	c, err := authapi.New(srv.URL + "/api")
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "john.doe@example.com", "password123")
	require.Error(t, err)
	require.Contains(t, err.Error(), "response shape")
}

func TestLogin_RejectsUnknownRoleInUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "header123.payload456.signature789",
			"refreshToken": "header123.payload456.signature000",
			"user": map[string]string{
				"id": "user-1", "name": "John Doe",
				"email": "john.doe@example.com", "role": "superuser",
			},
		})
	}))
	defer srv.Close()

	c, err := authapi.New(srv.URL + "/api")
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "john.doe@example.com", "password123")
	require.Error(t, err)
}

func TestLogin_ValidatesInputBeforeNetwork(t *testing.T) {
	c, err := authapi.New("http://localhost:0/api")
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "not-an-email", "password123")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid login input")
}

func TestLogin_TimeoutIsTransient(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	c, err := authapi.New(srv.URL+"/api", authapi.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "john.doe@example.com", "password123")
	require.Error(t, err)
	require.True(t, apiutil.IsTransient(err))
}

func TestRegister_Success(t *testing.T) {
	var got authapi.RegisterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := authapi.New(srv.URL + "/api")
	require.NoError(t, err)

	err = c.Register(context.Background(), authapi.RegisterRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "password123",
		Role:     users.RoleTeacher,
	})
	require.NoError(t, err)
	require.Equal(t, users.RoleTeacher, got.Role)
}

func TestRegister_ShortPasswordRejectedLocally(t *testing.T) {
	c, err := authapi.New("http://localhost:0/api")
	require.NoError(t, err)

	err = c.Register(context.Background(), authapi.RegisterRequest{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Password: "short",
		Role:     users.RoleStudent,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid registration input")
}

func TestRefresh_SendsRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/refresh", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "header123.payload456.signature000", body["refreshToken"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "header123.payload456.signature111",
			"user": map[string]string{
				"id": "user-1", "name": "John Doe",
				"email": "john.doe@example.com", "role": "student",
			},
		})
	}))
	defer srv.Close()

	c, err := authapi.New(srv.URL + "/api")
	require.NoError(t, err)

	resp, err := c.Refresh(context.Background(), "header123.payload456.signature000")
	require.NoError(t, err)
	require.Equal(t, "header123.payload456.signature111", resp.AccessToken)
}

func TestLogout_ReportsServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := authapi.New(srv.URL + "/api")
	require.NoError(t, err)

	// The caller decides whether to swallow this; the client just reports.
	err = c.Logout(context.Background(), "header123.payload456.signature000")
	require.True(t, apiutil.IsStatus(err, http.StatusInternalServerError))
}
