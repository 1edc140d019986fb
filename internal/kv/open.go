package kv

import (
	"context"
	"fmt"

	"manaklaltailor.in/web/internal/config"
)

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile:
		return NewFile(cfg.Dir)
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.BackendRedis:
		r := NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, err
		}
		return r, nil
	case config.BackendFirestore:
		return NewFirestore(ctx, FirestoreOptions{
			ProjectID:    cfg.Firestore.ProjectID,
			Collection:   cfg.Firestore.Collection,
			EmulatorHost: cfg.Firestore.EmulatorHost,
		})
	default:
		return nil, fmt.Errorf("kv: unsupported backend %q", cfg.Backend)
	}
}
