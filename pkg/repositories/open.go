package repositories

import (
	"context"
	"fmt"
)

// Open returns the repository for driver ("sqlite", "postgres" or "memory").
func Open(ctx context.Context, driver, dsn string) (Repository, error) {
	switch driver {
	case "sqlite":
		r, err := NewSQLiteRepository(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "postgres":
		r, err := NewPostgresRepository(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "memory":
		return NewInMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown save driver: %s", driver)
	}
}
