package services

import (
	"context"
	"fmt"
	"sync"

	"livenotes/internal/models"
	"livenotes/internal/providers"
	"livenotes/internal/storage/interfaces"
)

// OptionsService holds the export options shared by every room.
type OptionsService struct {
	mu      sync.RWMutex
	opts    models.ExportOptions
	backend interfaces.Backend
	logger  providers.Logger
}

func NewOptionsService(backend interfaces.Backend, logger providers.Logger) *OptionsService {
	return &OptionsService{backend: backend, logger: logger}
}

func (svc *OptionsService) Load(ctx context.Context) error {
	blob, err := svc.backend.Get(ctx, models.OptionsKey, models.DefaultOptionsBlob)
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}
	opts, err := models.ParseExportOptions(blob)
	if err != nil {
		return fmt.Errorf("load options: %w", err)
	}

	svc.mu.Lock()
	svc.opts = opts
	svc.mu.Unlock()
	return nil
}

func (svc *OptionsService) Get() models.ExportOptions {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.opts
}

// Set persists opts and only then makes them current.
func (svc *OptionsService) Set(ctx context.Context, opts models.ExportOptions) error {
	blob, err := models.EncodeExportOptions(opts)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if err := svc.backend.Set(ctx, models.OptionsKey, blob); err != nil {
		return fmt.Errorf("persist options: %w", err)
	}
	svc.opts = opts
	svc.logger.Infof(providers.TypeApp, "export options updated: relative=%t offset=%ds", opts.UseRelativeTime, opts.TimeOffsetSeconds)
	return nil
}
