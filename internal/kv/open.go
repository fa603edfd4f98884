package kv

import (
	"context"
	"fmt"

	"github.com/Kavirubc/gh-riskradar/internal/config"
)

// Open creates the backend selected by cfg.Backend
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "bolt", "":
		return NewBoltStore(cfg.Path, cfg.MaxValueBytes)
	case "sqlite":
		return NewSQLiteStore(cfg.Path, cfg.MaxValueBytes)
	case "qdrant":
		return NewQdrantStore(ctx, cfg.Qdrant, cfg.MaxValueBytes)
	case "memory":
		return NewMemoryStore(cfg.MaxValueBytes), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
