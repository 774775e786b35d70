package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNoSession is returned by Load when no session has been saved
var ErrNoSession = errors.New("not logged in")

// FileStore persists a session as YAML. The file is readable by its owner only.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns ~/.config/siports/session.yaml (or the platform equivalent)
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(dir, "siports", "session.yaml"), nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (*Session, error) {
	dat, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("could not read session file: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(dat, &s); err != nil {
		return nil, fmt.Errorf("could not parse session file %s: %w", f.path, err)
	}
	if s.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (f *FileStore) Save(s *Session) error {
	if s == nil || s.AccessToken == "" {
		return errors.New("refusing to save a session without an access token")
	}

	dat, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("could not create session directory: %w", err)
	}

	// write then rename so a crash never leaves a truncated file
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, dat, 0o600); err != nil {
		return fmt.Errorf("could not write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("could not write session file: %w", err)
	}
	return nil
}

// Clear removes the saved session. Clearing when nothing is saved is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not remove session file: %w", err)
	}
	return nil
}
