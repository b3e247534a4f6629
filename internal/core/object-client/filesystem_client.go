package objectclient

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/markdave123-py/docqa/internal/core"
)

var _ core.ObjectClient = (*FilesystemClient)(nil)

// ErrInvalidKey is returned for keys that would resolve outside the root.
var ErrInvalidKey = errors.New("invalid storage key")

// FilesystemClient stores objects as files below a root directory; a key maps
// directly to a relative file path.
type FilesystemClient struct {
	root   string
	logger *slog.Logger
}

func NewFilesystemClient(root string, logger *slog.Logger) (*FilesystemClient, error) {
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	return &FilesystemClient{root: absRoot, logger: logger.With("component", "filesystem-storage")}, nil
}

// UploadFile writes data to a temp file in the target directory and renames
// it over the key, so readers never see a partial file. Concurrent writes to
// the same key leave one complete copy (last rename wins).
func (c *FilesystemClient) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	full, err := c.fullPath(key)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename temp file: %w", err)
	}

	c.logger.Debug("file stored", "key", key, "bytes", len(data), "content_type", contentType)
	return cleanKey(key), nil
}

func (c *FilesystemClient) GetFile(ctx context.Context, key string) ([]byte, error) {
	full, err := c.fullPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// DeleteFile removes the file. A missing file is not an error.
func (c *FilesystemClient) DeleteFile(ctx context.Context, key string) error {
	full, err := c.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (c *FilesystemClient) fullPath(key string) (string, error) {
	key = cleanKey(key)
	if key == "" || key == "." || key == ".." || strings.HasPrefix(key, "../") || path.IsAbs(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	full := filepath.Join(c.root, filepath.FromSlash(key))
	if !strings.HasPrefix(full, c.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return full, nil
}

func cleanKey(key string) string {
	return path.Clean(strings.ReplaceAll(key, "\\", "/"))
}
