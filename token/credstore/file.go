package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eduhub/go-edu-client/token"
	"github.com/eduhub/go-edu-client/users"
)

var _ Store = (*FileStore)(nil)

// FileStore persists credentials to a JSON file. The file is the shared
// mutable state between concurrent clients of the same profile; writes are
// atomic (write-then-rename) so readers never observe a torn file and
// concurrent writers resolve last-write-wins.
type FileStore struct {
	path string
	log  zerolog.Logger
	lock sync.Mutex
}

// FileStoreOption modifies a FileStore.
type FileStoreOption func(*FileStore)

// WithLogger sets the store's logger.
func WithLogger(log zerolog.Logger) FileStoreOption {
	return func(fs *FileStore) {
		fs.log = log
	}
}

// NewFileStore creates a FileStore at the given path, creating parent
// directories as needed.
func NewFileStore(path string, options ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("[NewFileStore] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credentials dir: %w", err)
	}
	fs := &FileStore{
		path: path,
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(fs)
	}
	return fs, nil
}

// Save writes both tokens and the user profile. Tokens failing the
// structural check are rejected before anything is written.
func (fs *FileStore) Save(accessToken, refreshToken string, user *users.User) error {
	if err := token.CheckStructure(accessToken); err != nil {
		return fmt.Errorf("refusing to persist access token: %w", err)
	}
	if err := token.CheckStructure(refreshToken); err != nil {
		return fmt.Errorf("refusing to persist refresh token: %w", err)
	}

	data, err := json.Marshal(&Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to commit credentials: %w", err)
	}
	fs.log.Debug().Str("path", fs.path).Msg("credentials saved")
	return nil
}

// Load reads the persisted credentials. A missing file yields empty
// credentials; an unreadable or unparsable file is an error.
func (fs *FileStore) Load() (*Credentials, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return &Credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// Clear removes the credentials file. Clearing an absent store is a no-op.
func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
