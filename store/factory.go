package store

import (
	"context"
	"fmt"

	"github.com/stevemurr/shoplist/config"
)

// New creates a Store based on cfg.Backend.
//
// Supported backends:
//
//	"file"   - JSON or YAML document at cfg.File (default)
//	"json"   - alias for "file"
//	"sqlite" - SQLite database at cfg.SqlitePath using cfg.SqliteDriver
//	"mongo"  - MongoDB collection reached through cfg.MongoURI
//	"memory" - In-memory (ephemeral, for testing)
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, config.BackendJSON, "":
		return NewFileStore(cfg.File)
	case config.BackendSqlite:
		return NewSqliteStore(cfg.SqlitePath, cfg.SqliteDriver)
	case config.BackendMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: file, json, sqlite, mongo, memory)", ErrUnknownBackend, cfg.Backend)
	}
}
