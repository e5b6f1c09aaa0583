// Package storage loads and saves integer lists through one of several
// backends selected by configuration. Every backend keeps the flat integer
// sequence only; names follow the same validity rule as local files.
package storage

import (
	"context"
	"fmt"

	"intlist/config"
	"intlist/types"
)

type Store interface {
	// Load appends the values stored under name to list and returns how many
	// were added. On error list is left unchanged.
	Load(ctx context.Context, name string, list *types.IntegerList) (int, error)

	// Save replaces whatever is stored under name with the contents of list.
	Save(ctx context.Context, name string, list *types.IntegerList) error

	Close() error
}

// Open returns the Store selected by conf.Backend.
func Open(conf config.Storage) (Store, error) {
	switch conf.Backend {
	case config.BackendFile, "":
		return NewFileStore(conf.Dir), nil
	case config.BackendS3:
		return NewS3Store(conf.S3)
	case config.BackendRedis:
		return NewRedisStore(conf.Redis), nil
	case config.BackendSQLite:
		return NewSQLiteStore(conf.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", conf.Backend)
	}
}

func checkName(op, name string) error {
	if err := types.ValidateName(name); err != nil {
		return &types.FileError{Op: op, Path: name, Err: err}
	}
	return nil
}
