package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps exhibit blobs under a directory on disk. It is the
// fallback when no S3 bucket is configured.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (l *LocalStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create artifact subdir: %w", err)
	}
	// Write to a temp file first so readers never see a partial blob.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("finalize artifact: %w", err)
	}
	return nil
}

func (l *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// path maps a storage key to a filesystem path, rejecting keys that
// would escape the root.
func (l *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}
