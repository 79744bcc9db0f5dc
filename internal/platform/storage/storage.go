// Package storage opens the repository provider selected by STORAGE_DRIVER.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
	"github.com/SscSPs/mbg_dapur_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/mbg_dapur_ledger/internal/repositories/memory"
	"github.com/SscSPs/mbg_dapur_ledger/pkg/database"
)

// Options tunes Open.
type Options struct {
	// Migrate applies pending up migrations before returning a postgres provider.
	Migrate bool
}

// Open returns the configured repositories and a func releasing them.
func Open(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		store.SeedSystemAccounts(time.Now().UTC())
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewRepositoryProvider(store), func() {}, nil

	case config.StoragePostgres:
		if opts.Migrate {
			logger.Info("Running database migrations...")
			changed, err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp, logger)
			if err != nil {
				return portsrepo.RepositoryProvider{}, nil, err
			}
			if changed {
				logger.Info("Database migrations applied successfully.")
			} else {
				logger.Info("No new migrations to apply.")
			}
		}

		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(dbPool), dbPool.Close, nil

	default:
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
