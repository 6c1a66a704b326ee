package repository

import (
	"context"
	"time"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// Claim defines the interface for claim data access
type Claim interface {
	// GetClaim returns the claim for (playerID, spotID), or nil when
	// the player has never claimed the spot.
	GetClaim(ctx context.Context, playerID, spotID string) (*domain.Claim, error)

	UpsertClaim(ctx context.Context, claim *domain.Claim) error

	// DecayClaims applies time-based decay to every claim in one
	// set-based statement and returns the number of rows touched.
	// ratePerHour is the claim value lost per hour since LastDecay;
	// values clamp at zero and LastDecay advances to now.
	DecayClaims(ctx context.Context, now time.Time, ratePerHour float64) (int64, error)

	// ClaimsBySpot returns the spot's leaderboard ordered by claim
	// value, highest first.
	ClaimsBySpot(ctx context.Context, spotID string, limit int) ([]domain.ClaimRanking, error)

	ClaimsByPlayer(ctx context.Context, playerID string) ([]domain.Claim, error)
}
