package cli

import (
	"fmt"
	"log/slog"

	"github.com/roach88/recordselect/internal/activerecord"
	"github.com/roach88/recordselect/internal/kvstore"
	"github.com/roach88/recordselect/internal/store"
)

// recordStore is what the load and select commands need from a backend.
type recordStore interface {
	activerecord.Resolver
	activerecord.Writer
	activerecord.TypeSaver
	Close() error
}

// openStore opens the configured backend at path. The SQLite backend
// treats path as a database file, pebble as a directory.
func openStore(backend, path string, logger *slog.Logger) (recordStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required (--db or config db)")
	}

	logger.Debug("opening store", "backend", backend, "path", path)
	switch backend {
	case "pebble":
		st, err := kvstore.Open(path, kvstore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return st, nil
	case "sqlite", "":
		st, err := store.Open(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
