package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/manifest"
)

// SidecarSuffix is appended to the scene key to name a manifest file.
const SidecarSuffix = ".manifest.json"

// FileStore keeps manifests as "<key>.manifest.json" below a root directory.
type FileStore struct {
	mu   sync.RWMutex
	root string
}

// NewFileStore returns a store rooted at root, creating it if needed.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store dir %s", root)
	}
	return &FileStore{root: root}, nil
}

// Path returns the file a manifest for key is stored in.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key)+SidecarSuffix)
}

func (s *FileStore) Load(ctx context.Context, key string) (*manifest.Manifest, bool, error) {
	if err := errors.ValidateSceneKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := manifest.ReadFile(s.Path(key))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (s *FileStore) Save(ctx context.Context, key string, m *manifest.Manifest) error {
	if err := errors.ValidateSceneKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create %s", filepath.Dir(path))
	}
	tmp := path + ".tmp"
	if err := manifest.WriteFile(m, tmp); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write manifest %s", key)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "replace manifest %s", key)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := errors.ValidateSceneKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove manifest %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close(context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
