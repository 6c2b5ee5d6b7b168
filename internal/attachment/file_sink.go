package attachment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSink stores objects in a local directory that is served as static
// files under urlPrefix. In-flight writes live in a sibling directory so
// they are never reachable through the served root.
type FileSink struct {
	root      string
	tmpDir    string
	urlPrefix string
}

// NewFileSink creates root and its sibling tmp dir if needed.
func NewFileSink(root, urlPrefix string) (*FileSink, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	tmpDir := filepath.Join(filepath.Dir(abs), "."+filepath.Base(abs)+"-tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload tmp directory: %w", err)
	}
	return &FileSink{root: abs, tmpDir: tmpDir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Root is the directory files are written to.
func (s *FileSink) Root() string { return s.root }

// URLPrefix is the path prefix locators start with.
func (s *FileSink) URLPrefix() string { return s.urlPrefix }

// Put writes to a temp file and renames it into place, so readers never
// see a partial file.
func (s *FileSink) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	tmp, err := os.CreateTemp(s.tmpDir, "put-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", err
	}

	dst := filepath.Join(s.root, name)
	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("object %q already exists", name)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return path.Join(s.urlPrefix, name), nil
}

// Delete removes the file behind locator. Missing files are ignored.
func (s *FileSink) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := s.nameFromLocator(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileSink) nameFromLocator(locator string) (string, error) {
	prefix := strings.TrimSuffix(s.urlPrefix, "/") + "/"
	if !strings.HasPrefix(locator, prefix) {
		return "", fmt.Errorf("locator %q is outside %s", locator, s.urlPrefix)
	}
	name := strings.TrimPrefix(locator, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid locator %q", locator)
	}
	return name, nil
}
