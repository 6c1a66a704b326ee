package repository

import (
	"context"
	"time"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// Spot defines the interface for spot data access
type Spot interface {
	CreateSpot(ctx context.Context, spot *domain.Spot) error
	GetSpot(ctx context.Context, id string) (*domain.Spot, error)
	DeleteSpot(ctx context.Context, id string) error

	// SpotsNear returns spots within radiusM of center ordered by
	// distance, nearest first.
	SpotsNear(ctx context.Context, center domain.Coordinate, radiusM float64) ([]domain.SpotWithDistance, error)

	// Loot spot operations
	ActiveLootForOwner(ctx context.Context, ownerID string, now time.Time) ([]domain.Spot, error)
	CountActiveLootForOwner(ctx context.Context, ownerID string, now time.Time) (int, error)

	// DeleteLootSpot removes a loot spot only if it still exists.
	// It reports whether this call performed the delete, which makes
	// it safe to use as the winner election for concurrent collectors.
	DeleteLootSpot(ctx context.Context, id string) (bool, error)

	// DeleteExpiredLoot removes loot spots whose payload expired before
	// now and returns how many were removed.
	DeleteExpiredLoot(ctx context.Context, now time.Time) (int64, error)
}
