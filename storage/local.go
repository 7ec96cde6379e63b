package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalBackend stores files on the local filesystem under a root directory.
// References are root-relative paths like "materials/2026/09/<uuid>.pdf".
type LocalBackend struct {
	root string
}

// NewLocalBackend creates a backend rooted at root, creating it if needed.
func NewLocalBackend(root string) *LocalBackend {
	if root == "" {
		root = "uploads"
	}
	_ = os.MkdirAll(root, 0o755)
	return &LocalBackend{root: root}
}

// Store writes data under folder/yyyy/mm with a uuid-based name, keeping the
// original extension.
func (l *LocalBackend) Store(data []byte, folder, filename string) (string, error) {
	now := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String()[:16] + ext

	rel := filepath.Join(folder, fmt.Sprintf("%d", now.Year()), fmt.Sprintf("%02d", now.Month()), name)
	abs := filepath.Join(l.root, rel)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %v", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}

	// Use forward slashes so references are stable across platforms
	return filepath.ToSlash(rel), nil
}

// Resolve opens the file behind a reference.
func (l *LocalBackend) Resolve(ref string) (io.ReadCloser, error) {
	abs, err := l.absPath(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes the file behind a reference. A missing file is not an error.
func (l *LocalBackend) Remove(ref string) error {
	abs, err := l.absPath(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// absPath resolves a reference inside the root, rejecting path traversal.
func (l *LocalBackend) absPath(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file reference")
	}
	return filepath.Join(l.root, clean), nil
}
