package repository

import (
	"context"
	"time"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// Buff defines the interface for buff data access
type Buff interface {
	InsertBuff(ctx context.Context, buff *domain.Buff) error

	// ActiveBuffs returns the player's buffs that expire after now
	ActiveBuffs(ctx context.Context, playerID string, now time.Time) ([]domain.Buff, error)

	// DeleteExpiredBuffs removes buffs that expired before now and
	// returns how many were removed.
	DeleteExpiredBuffs(ctx context.Context, now time.Time) (int64, error)
}
