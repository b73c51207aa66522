package store

import (
	"context"
	"fmt"

	"github.com/guidr-app/guidr/backend/internal/config"
)

// New builds the repository selected by cfg.Driver.
func New(ctx context.Context, cfg config.StoreConfig) (Repository, error) {
	switch cfg.Driver {
	case config.StoreMemory, "":
		return NewMemory(), nil
	case config.StoreSQLite:
		return NewSQLite(cfg.SQLitePath)
	case config.StoreFirestore:
		return NewFirestore(ctx, cfg.FirestoreProjectID)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
