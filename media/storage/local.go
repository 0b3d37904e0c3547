package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Provider writes encoded images to their destination.
type Provider interface {
	Write(ctx context.Context, path string, r io.Reader) (int64, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	Name() string
}

// LocalProvider implements Provider for the local filesystem. Relative
// paths resolve against basePath when it is set.
type LocalProvider struct {
	basePath string
	perm     os.FileMode
}

// NewLocalProvider creates a local provider. Unlike an upload store it does
// not create directories: output directories are validated up front.
func NewLocalProvider(basePath string) *LocalProvider {
	return &LocalProvider{
		basePath: basePath,
		perm:     0644,
	}
}

func (p *LocalProvider) resolve(path string) string {
	if p.basePath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.basePath, path)
}

// Write copies r into path in one pass, replacing any existing file.
func (p *LocalProvider) Write(ctx context.Context, path string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fullPath := p.resolve(path)
	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, p.perm)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(dst, r)
	if err != nil {
		_ = dst.Close()
		return size, fmt.Errorf("failed to write file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		return size, fmt.Errorf("failed to close file: %w", err)
	}
	return size, nil
}

// Exists checks if a file exists
func (p *LocalProvider) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(p.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Delete removes a file; a missing file is not an error.
func (p *LocalProvider) Delete(ctx context.Context, path string) error {
	err := os.Remove(p.resolve(path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (p *LocalProvider) Name() string {
	return "local"
}

var _ Provider = (*LocalProvider)(nil)
