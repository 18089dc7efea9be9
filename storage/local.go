package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes files under dir and serves them from publicPath.
type LocalStore struct {
	dir        string
	publicPath string
}

func NewLocalStore(dir, publicPath string) *LocalStore {
	return &LocalStore{dir: dir, publicPath: strings.TrimRight(publicPath, "/")}
}

func (s *LocalStore) Name() string { return "local" }

func (s *LocalStore) Save(_ context.Context, key, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return s.publicPath + "/" + key, nil
}
