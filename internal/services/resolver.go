package services

import (
	"context"

	"livenotes/internal/models"
)

// IdentityResolver supplies broadcaster metadata for a room. Implementations
// must honour ctx cancellation; callers bound every call with the configured
// resolver timeout.
type IdentityResolver interface {
	Resolve(ctx context.Context, roomID string) (models.Identity, error)
	LiveStatus(ctx context.Context, roomID string) (models.LiveStatus, error)
}

// StaticResolver answers with fixed values. The HTTP and CLI surfaces build
// one per request from the metadata the caller supplies.
type StaticResolver struct {
	Identity models.Identity
	Status   models.LiveStatus
}

func (s StaticResolver) Resolve(ctx context.Context, _ string) (models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return models.Identity{}, err
	}
	return s.Identity, nil
}

func (s StaticResolver) LiveStatus(ctx context.Context, _ string) (models.LiveStatus, error) {
	if err := ctx.Err(); err != nil {
		return models.LiveStatus{}, err
	}
	return s.Status, nil
}
