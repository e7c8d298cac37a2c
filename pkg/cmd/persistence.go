// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/intelogroup/clixen/pkg/persistence"
	"github.com/intelogroup/clixen/pkg/persistence/file"
	"github.com/intelogroup/clixen/pkg/persistence/postgresql"
	"github.com/intelogroup/clixen/pkg/persistence/redis"
)

// NewPersistence builds the storage backend from a database URL. A non-empty
// redisURL layers a session cache in front of the backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL, redisURL string) (persistence.Persistence, error) {
	backend, err := newBackend(ctx, logger, databaseURL)
	if err != nil {
		return nil, err
	}

	if redisURL == "" {
		return backend, nil
	}

	cached, err := redis.NewSessionCache(ctx, logger, redisURL, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to connect session cache: %w", err)
	}

	return cached, nil
}

func newBackend(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
