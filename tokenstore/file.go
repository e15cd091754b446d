package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

const lockRetryDelay = 10 * time.Millisecond

// FileStore keeps the session id in a small file guarded by a lock file,
// so several processes on one host share the same id.
type FileStore struct {
	path string
	lock *flock.Flock
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("token file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create token directory")
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (string, error) {
	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", errors.Wrap(err, "acquire token lock")
	}
	if !locked {
		return "", errors.New("token lock not acquired")
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "read token file")
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Save(ctx context.Context, sessionID string) error {
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return errors.Wrap(err, "acquire token lock")
	}
	if !locked {
		return errors.New("token lock not acquired")
	}
	defer func() { _ = s.lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp token file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(sessionID + "\n"); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write token file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close token file")
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return errors.Wrap(err, "chmod token file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace token file")
}

// Close releases the lock file handle.
func (s *FileStore) Close() error {
	return s.lock.Close()
}
