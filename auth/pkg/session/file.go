package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/abhishek622/foodreview/auth/pkg/model"
)

// FileBackend keeps the session in a JSON file readable only by the owner.
type FileBackend struct {
	path string
}

// NewFileBackend creates a file backend at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the session. A missing file means no session.
func (b *FileBackend) Load() (*model.Session, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save writes the session.
func (b *FileBackend) Save(sess *model.Session) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(b.path, data, 0o600)
}

// Clear removes the session file.
func (b *FileBackend) Clear() error {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
