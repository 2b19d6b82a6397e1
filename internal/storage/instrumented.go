package storage

import (
	"context"
	"errors"
	"time"

	"livenotes/internal/providers"
	"livenotes/internal/storage/interfaces"
)

var ErrUsageUnsupported = errors.New("backend does not report usage")

// InstrumentedBackend records timing and failures of every call on the
// wrapped backend.
type InstrumentedBackend struct {
	inner   interfaces.Backend
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewInstrumentedBackend(inner interfaces.Backend, logger providers.Logger, metrics providers.MetricsProviderInterface) *InstrumentedBackend {
	return &InstrumentedBackend{inner: inner, logger: logger, metrics: metrics}
}

func (ib *InstrumentedBackend) observe(op, key string, start time.Time, err error) {
	ib.metrics.ObserveStorageOperation(ib.inner.Name(), op, time.Since(start), err)
	if err != nil {
		ib.logger.Errorf(providers.TypeStorage, "%s %s on %s failed: %v", ib.inner.Name(), op, key, err)
	}
}

func (ib *InstrumentedBackend) Name() string {
	return ib.inner.Name()
}

func (ib *InstrumentedBackend) Get(ctx context.Context, key, def string) (string, error) {
	start := time.Now()
	v, err := ib.inner.Get(ctx, key, def)
	ib.observe("get", key, start, err)
	return v, err
}

func (ib *InstrumentedBackend) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := ib.inner.Set(ctx, key, value)
	ib.observe("set", key, start, err)
	return err
}

func (ib *InstrumentedBackend) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := ib.inner.Delete(ctx, key)
	ib.observe("delete", key, start, err)
	return err
}

func (ib *InstrumentedBackend) Usage(ctx context.Context) (interfaces.Usage, error) {
	reporter, ok := ib.inner.(interfaces.UsageReporter)
	if !ok {
		return interfaces.Usage{}, ErrUsageUnsupported
	}
	return reporter.Usage(ctx)
}

func (ib *InstrumentedBackend) Keys(ctx context.Context) ([]string, error) {
	lister, ok := ib.inner.(interfaces.KeyLister)
	if !ok {
		return nil, ErrKeysUnsupported
	}
	return lister.Keys(ctx)
}

func (ib *InstrumentedBackend) Close() error {
	return ib.inner.Close()
}
