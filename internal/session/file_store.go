package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"arkive/internal/domain/models"
)

// A second is enough to read or write the session file, but slow disks
// under load get some slack.
var lockTimeout = 5 * time.Second

// FileStore keeps the session in a YAML file guarded by an OS file lock.
// Writes go to a temp file that is renamed into place.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore returns a store for the session file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the session file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) acquire(ctx context.Context, operation string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := s.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("cannot %s session: %w", operation, err)
	}
	if !locked {
		return fmt.Errorf("cannot %s session: lock %s is held", operation, s.lock.Path())
	}
	return nil
}

// Load reads the session file
func (s *FileStore) Load(ctx context.Context) (*models.Session, error) {
	if err := s.acquire(ctx, "read"); err != nil {
		return nil, err
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess models.Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", s.path, err)
	}
	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session file atomically with owner-only permissions
func (s *FileStore) Save(ctx context.Context, sess *models.Session) error {
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.acquire(ctx, "write"); err != nil {
		return err
	}
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the session file; a missing file is not an error
func (s *FileStore) Clear(ctx context.Context) error {
	if err := s.acquire(ctx, "clear"); err != nil {
		return err
	}
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
