package db

import (
	"context"
	"fmt"

	"github.com/markdave123-py/docqa/internal/config"
	"github.com/markdave123-py/docqa/internal/core"
)

// New returns the document store selected by DB_DRIVER.
func New(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
		return NewDatabaseClient(ctx, cfg)
	case "memory":
		return NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
