package objectclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markdave123-py/docqa/internal/config"
	"github.com/markdave123-py/docqa/internal/core"
)

// New returns the object store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.ObjectClient, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewFilesystemClient(cfg.StorageRoot, logger)
	case "s3":
		return NewS3Client(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
