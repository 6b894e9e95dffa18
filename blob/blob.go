// Package blob persists opaque values under string keys. Every Put replaces the
// whole value; there are no partial updates and the last write wins.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhirockzz/cosmosdb-go-sdk-helper/auth"
	"github.com/deepraj21/bhashabandhu-hackathon/config"
)

// ErrNotFound is returned by Get when nothing was ever stored under the key.
var ErrNotFound = errors.New("blob not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Open builds the backend selected in cfg.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return NewFileStore(cfg.DataDir)
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath())
	case config.BackendCosmosDB:
		cosmos := cfg.Storage.Cosmos
		client, err := auth.GetCosmosDBClient(cosmos.Endpoint, cosmos.Emulator, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cosmosdb client: %w", err)
		}
		return NewCosmosStore(client, cosmos.Database, cosmos.Container)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// validKey rejects keys that could escape a directory or break a cosmos item id.
func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\?#`) {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
