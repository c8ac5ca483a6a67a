package credstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eduhub/go-edu-client/token"
	"github.com/eduhub/go-edu-client/token/credstore"
	"github.com/eduhub/go-edu-client/token/tokentest"
	"github.com/eduhub/go-edu-client/users"
)

var (
	testSecret = []byte("test-secret-key-1234")
	testUser   = users.User{
		ID:    "user-1",
		Name:  "John Doe",
		Email: "john.doe@example.com",
		Role:  users.RoleTeacher,
	}
)

func newFileStore(t *testing.T) *credstore.FileStore {
	t.Helper()
	fs, err := credstore.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	return fs
}

func TestFileStore_RoundTrip(t *testing.T) {
	fs := newFileStore(t)

	access := tokentest.Mint(testSecret, testUser)
	refresh := tokentest.MintRefresh(testSecret, testUser)
	require.NoError(t, fs.Save(access, refresh, &testUser))

	creds, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, access, creds.AccessToken)
	require.Equal(t, refresh, creds.RefreshToken)
	require.Equal(t, &testUser, creds.User)
}

func TestFileStore_SaveRejectsMalformedTokens(t *testing.T) {
	fs := newFileStore(t)
	refresh := tokentest.MintRefresh(testSecret, testUser)

	t.Run("two segments", func(t *testing.T) {
		err := fs.Save("onlyheader.onlypayload", refresh, &testUser)
		require.ErrorIs(t, err, token.MalformedTokenErr)
	})

	t.Run("short segments", func(t *testing.T) {
		err := fs.Save("a.b.c", refresh, &testUser)
		require.ErrorIs(t, err, token.MalformedTokenErr)
	})

	t.Run("malformed refresh token", func(t *testing.T) {
		err := fs.Save(tokentest.Mint(testSecret, testUser), "nope", &testUser)
		require.ErrorIs(t, err, token.MalformedTokenErr)
	})

	// Nothing reached durable storage.
	creds, err := fs.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	fs := newFileStore(t)

	creds, err := fs.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())
}

func TestFileStore_Clear(t *testing.T) {
	fs := newFileStore(t)

	access := tokentest.Mint(testSecret, testUser)
	refresh := tokentest.MintRefresh(testSecret, testUser)
	require.NoError(t, fs.Save(access, refresh, &testUser))

	require.NoError(t, fs.Clear())
	creds, err := fs.Load()
	require.NoError(t, err)
	require.True(t, creds.Empty())

	// Clearing twice is fine.
	require.NoError(t, fs.Clear())
}

func TestFileStore_LastWriteWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	first, err := credstore.NewFileStore(path)
	require.NoError(t, err)
	second, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	accessA := tokentest.Mint(testSecret, testUser)
	accessB := tokentest.Mint(testSecret, testUser)
	refresh := tokentest.MintRefresh(testSecret, testUser)

	require.NoError(t, first.Save(accessA, refresh, &testUser))
	require.NoError(t, second.Save(accessB, refresh, &testUser))

	creds, err := first.Load()
	require.NoError(t, err)
	require.Equal(t, accessB, creds.AccessToken)
}

func TestFileStore_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	fs, err := credstore.NewFileStore(path)
	require.NoError(t, err)

	_, err = fs.Load()
	require.Error(t, err)
}
