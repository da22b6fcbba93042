package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// StateFile persists the single active identity across restarts, the way a
// browser keeps it in local storage under one well-known key.
type StateFile struct{ path string }

func NewStateFile(dataDir string) (*StateFile, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &StateFile{path: filepath.Join(dataDir, "active_user")}, nil
}

// Load returns the persisted identity, if any.
func (s *StateFile) Load() (string, bool) {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(buf))
	return v, v != ""
}

func (s *StateFile) Save(identity string) error {
	return os.WriteFile(s.path, []byte(identity+"\n"), 0o600)
}

func (s *StateFile) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
