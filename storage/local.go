package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes files under dir and serves them beneath urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalStore) Name() string { return "storage_local" }

func (s *LocalStore) Dir() string { return s.dir }

// Save replaces any file already stored under key.
func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	key = path.Clean("/" + key)[1:]
	if key == "" {
		return "", errors.New("empty object key")
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + key, nil
}

// Delete removes the file behind a URL returned by Save. Missing files are ignored.
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, s.urlPrefix+"/")
	if key == url || key == "" {
		return fmt.Errorf("url %q is not served by this store", url)
	}
	key = path.Clean("/" + key)[1:]
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
