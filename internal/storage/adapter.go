package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"livenotes/internal/providers"
	"livenotes/internal/storage/interfaces"
	"livenotes/internal/structures"
)

var (
	ErrUnknownBackend  = errors.New("unknown storage backend")
	ErrKeysUnsupported = errors.New("backend cannot enumerate keys")
)

// Opener lazily constructs a backend so the adapter can decide which one
// to keep.
type Opener func(ctx context.Context) (interfaces.Backend, error)

// Adapter picks one backend for the life of the process: the primary when
// it opens, the fallback otherwise. On a successful primary open every key
// found in the fallback is moved into the primary.
type Adapter struct {
	backend  interfaces.Backend
	fallback bool
	migrated int
}

func NewAdapter(ctx context.Context, primary, fallback Opener, logger providers.Logger) (*Adapter, error) {
	p, perr := primary(ctx)
	if perr != nil {
		logger.Warnf(providers.TypeStorage, "primary storage unavailable, using fallback: %v", perr)
		fb, err := fallback(ctx)
		if err != nil {
			return nil, fmt.Errorf("open fallback after primary failure (%v): %w", perr, err)
		}
		return &Adapter{backend: fb, fallback: true}, nil
	}

	fb, err := fallback(ctx)
	if err != nil {
		// Nothing to migrate from.
		logger.Warnf(providers.TypeStorage, "fallback storage unreadable, skipping migration: %v", err)
		return &Adapter{backend: p}, nil
	}
	defer fb.Close()

	n, err := migrate(ctx, fb, p)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("migrate %s to %s: %w", fb.Name(), p.Name(), err)
	}
	if n > 0 {
		logger.Infof(providers.TypeStorage, "migrated %d keys from %s to %s", n, fb.Name(), p.Name())
	}
	return &Adapter{backend: p, migrated: n}, nil
}

// migrate copies every key of src into dst, then removes it from src. All
// copies happen before any deletion so a failed copy leaves src intact.
func migrate(ctx context.Context, src, dst interfaces.Backend) (int, error) {
	lister, ok := src.(interfaces.KeyLister)
	if !ok {
		return 0, nil
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		if errors.Is(err, ErrKeysUnsupported) {
			return 0, nil
		}
		return 0, err
	}

	for _, key := range keys {
		v, err := src.Get(ctx, key, "")
		if err != nil {
			return 0, err
		}
		if err := dst.Set(ctx, key, v); err != nil {
			return 0, err
		}
	}
	for _, key := range keys {
		if err := src.Delete(ctx, key); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

// Kind names the selected backend.
func (a *Adapter) Kind() string {
	return a.backend.Name()
}

func (a *Adapter) IsFallback() bool {
	return a.fallback
}

// Migrated is the number of keys moved from the fallback during open.
func (a *Adapter) Migrated() int {
	return a.migrated
}

func (a *Adapter) Name() string {
	return a.backend.Name()
}

func (a *Adapter) Get(ctx context.Context, key, def string) (string, error) {
	return a.backend.Get(ctx, key, def)
}

func (a *Adapter) Set(ctx context.Context, key, value string) error {
	return a.backend.Set(ctx, key, value)
}

func (a *Adapter) Delete(ctx context.Context, key string) error {
	return a.backend.Delete(ctx, key)
}

func (a *Adapter) Usage(ctx context.Context) (interfaces.Usage, error) {
	reporter, ok := a.backend.(interfaces.UsageReporter)
	if !ok {
		return interfaces.Usage{}, ErrUsageUnsupported
	}
	return reporter.Usage(ctx)
}

func (a *Adapter) Close() error {
	return a.backend.Close()
}

// Open builds the configured primary and the file fallback under
// conf.Storage.Dir and hands them to NewAdapter.
func Open(ctx context.Context, conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (*Adapter, error) {
	dir := conf.Storage.Dir
	quota := uint64(0)
	if conf.Storage.QuotaBytes > 0 {
		quota = uint64(conf.Storage.QuotaBytes)
	}

	var primary Opener
	switch conf.Storage.Primary {
	case PebbleBackendName:
		primary = func(ctx context.Context) (interfaces.Backend, error) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
			b, err := OpenPebbleBackend(filepath.Join(dir, "pebble"), quota)
			if err != nil {
				return nil, err
			}
			return NewInstrumentedBackend(b, logger, metrics), nil
		}
	case SqliteBackendName:
		primary = func(ctx context.Context) (interfaces.Backend, error) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
			b, err := OpenSqliteBackend(ctx, filepath.Join(dir, "livenotes.db"), quota)
			if err != nil {
				return nil, err
			}
			return NewInstrumentedBackend(b, logger, metrics), nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, conf.Storage.Primary)
	}

	fallback := func(ctx context.Context) (interfaces.Backend, error) {
		b, err := NewFileBackend(filepath.Join(dir, conf.Storage.FallbackFile), conf.Storage.MaxValueBytes, compressor)
		if err != nil {
			return nil, err
		}
		return NewInstrumentedBackend(b, logger, metrics), nil
	}

	return NewAdapter(ctx, primary, fallback, logger)
}
