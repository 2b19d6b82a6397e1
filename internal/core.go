package internal

import (
	"context"

	"livenotes/internal/providers"
	"livenotes/internal/services"
	"livenotes/internal/storage"
	"livenotes/internal/storage/interfaces"
	"livenotes/internal/structures"
	"livenotes/internal/transcript"
)

// Core bundles what both the HTTP server and the CLI commands operate on.
type Core struct {
	Conf       *structures.Config
	Logger     providers.Logger
	Metrics    providers.MetricsProviderInterface
	Backend    *storage.Adapter
	Rooms      *services.RoomRegistry
	Options    *services.OptionsService
	Exporter   *transcript.Exporter
	compressor interfaces.CompressorInterface
}

func NewCore(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, backend *storage.Adapter, compressor interfaces.CompressorInterface, rooms *services.RoomRegistry, options *services.OptionsService, exporter *transcript.Exporter) *Core {
	return &Core{
		Conf:       conf,
		Logger:     logger,
		Metrics:    metrics,
		Backend:    backend,
		Rooms:      rooms,
		Options:    options,
		Exporter:   exporter,
		compressor: compressor,
	}
}

// OpenStorage opens the configured backend with migration from the fallback.
func OpenStorage(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (*storage.Adapter, error) {
	adapter, err := storage.Open(context.Background(), conf, compressor, logger, metrics)
	if err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeStorage, "storage backend: %s (fallback=%t, migrated=%d)", adapter.Kind(), adapter.IsFallback(), adapter.Migrated())
	return adapter, nil
}

// LoadOptions builds the options service and reads the persisted options.
func LoadOptions(backend interfaces.Backend, logger providers.Logger) (*services.OptionsService, error) {
	svc := services.NewOptionsService(backend, logger)
	if err := svc.Load(context.Background()); err != nil {
		return nil, err
	}
	return svc, nil
}

// Close releases the backend, the compressor and the log files.
func (c *Core) Close() error {
	err := c.Backend.Close()
	if c.compressor != nil {
		c.compressor.Close()
	}
	c.Logger.Close()
	return err
}
