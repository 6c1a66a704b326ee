package repository

import (
	"context"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// VisitLog defines the interface for visit history access
type VisitLog interface {
	InsertVisit(ctx context.Context, visit *domain.Visit) error

	// LastVisit returns the player's most recent visit at spotID,
	// optionally restricted to auto or manual logs. kinds empty means
	// any kind. Returns nil when the player never visited the spot.
	LastVisit(ctx context.Context, playerID, spotID string, kinds ...string) (*domain.Visit, error)

	// LastVisitAnywhere returns the player's most recent visit at any
	// spot, or nil for a player with no history.
	LastVisitAnywhere(ctx context.Context, playerID string) (*domain.Visit, error)

	VisitsByPlayer(ctx context.Context, playerID string, limit int) ([]domain.Visit, error)
	VisitsBySpot(ctx context.Context, spotID string, limit int) ([]domain.Visit, error)

	// BeginTx starts a transaction spanning the visit, player and
	// claim tables for atomic reward application.
	BeginTx(ctx context.Context) (VisitTx, error)
}

// VisitTx extends Tx with the operations an accepted visit applies
// atomically: record the visit, credit the player, and grow the claim.
type VisitTx interface {
	Tx

	GetPlayerForUpdate(ctx context.Context, id string) (*domain.Player, error)
	GetLastVisitForUpdate(ctx context.Context, playerID, spotID string, kinds ...string) (*domain.Visit, error)
	InsertVisit(ctx context.Context, visit *domain.Visit) error
	UpdatePlayerProgress(ctx context.Context, id string, xp, level, totalClaimPoints int) error
	GetClaimForUpdate(ctx context.Context, playerID, spotID string) (*domain.Claim, error)
	UpsertClaim(ctx context.Context, claim *domain.Claim) error
}
