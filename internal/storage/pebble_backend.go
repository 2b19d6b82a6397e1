package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"livenotes/internal/storage/interfaces"
)

const PebbleBackendName = "pebble"

// PebbleBackend is the primary record store. Writes are synced.
type PebbleBackend struct {
	db         *pebble.DB
	path       string
	quotaBytes uint64
}

func OpenPebbleBackend(path string, quotaBytes uint64) (*PebbleBackend, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &PebbleBackend{db: db, path: path, quotaBytes: quotaBytes}, nil
}

func (pb *PebbleBackend) Name() string {
	return PebbleBackendName
}

func (pb *PebbleBackend) Get(ctx context.Context, key, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, closer, err := pb.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return def, nil
		}
		return "", fmt.Errorf("pebble get %s: %w", key, err)
	}
	value := string(v)
	if closer != nil {
		_ = closer.Close()
	}
	return value, nil
}

func (pb *PebbleBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := pb.db.Set([]byte(key), []byte(value), pebble.Sync); err != nil {
		return fmt.Errorf("pebble set %s: %w", key, err)
	}
	return nil
}

func (pb *PebbleBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := pb.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("pebble delete %s: %w", key, err)
	}
	return nil
}

// Usage reports the on-disk footprint of the database.
func (pb *PebbleBackend) Usage(ctx context.Context) (interfaces.Usage, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.Usage{}, err
	}
	return interfaces.Usage{
		UsedBytes:  pb.db.Metrics().DiskSpaceUsage(),
		QuotaBytes: pb.quotaBytes,
	}, nil
}

func (pb *PebbleBackend) Close() error {
	return pb.db.Close()
}
