package interfaces

import "context"

// Backend is a key-value store holding opaque string blobs.
type Backend interface {
	Get(ctx context.Context, key, def string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}

type Usage struct {
	UsedBytes  uint64 `json:"used_bytes"`
	QuotaBytes uint64 `json:"quota_bytes"`
}

// UsageReporter is implemented by backends that can report their footprint.
type UsageReporter interface {
	Usage(ctx context.Context) (Usage, error)
}

// KeyLister is implemented by backends whose content can be migrated.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}
