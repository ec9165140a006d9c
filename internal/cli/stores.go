package cli

import (
	"fmt"
	"log/slog"

	badgerstore "github.com/shreya0626/secret-santa/internal/adapter/badger"
	"github.com/shreya0626/secret-santa/internal/adapter/memory"
	"github.com/shreya0626/secret-santa/internal/adapter/postgres"
	"github.com/shreya0626/secret-santa/internal/adapter/sqlite"
	"github.com/shreya0626/secret-santa/internal/config"
	"github.com/shreya0626/secret-santa/internal/domain"
)

// backend is what every storage adapter provides besides sessions.
type backend interface {
	domain.CredentialRepository
	domain.WishlistRepository
	domain.AssignmentRepository
	domain.ClueRepository
	Close() error
}

type stores struct {
	backend
	sessions domain.SessionRepository
}

// openStores opens the backend selected by cfg.Store.
func openStores(cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		db := memory.New()
		return &stores{backend: db, sessions: db.NewSessionRepo()}, nil
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		return &stores{backend: db, sessions: postgres.NewSessionRepo(db)}, nil
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{backend: db, sessions: sqlite.NewSessionRepo(db)}, nil
	case config.StoreBadger:
		bcfg := badgerstore.DefaultConfig(cfg.BadgerPath)
		bcfg.Logger = log.With("component", "badger")
		db, err := badgerstore.Open(bcfg)
		if err != nil {
			return nil, err
		}
		return &stores{backend: db, sessions: badgerstore.NewSessionRepo(db)}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
