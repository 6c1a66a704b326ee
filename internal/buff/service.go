package buff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/repository"
)

// Service defines the interface for buff operations
type Service interface {
	// ActiveModifiers purges the player's expired buffs and composes
	// the remainder into one modifier set.
	ActiveModifiers(ctx context.Context, playerID string) (domain.BuffModifiers, error)

	// ActiveBuffs returns the player's unexpired buffs
	ActiveBuffs(ctx context.Context, playerID string) ([]domain.Buff, error)

	// Grant stores a new buff from a consumable's boost values
	Grant(ctx context.Context, playerID string, xpBoost, claimBoost, rangeBoostM float64, duration time.Duration) (*domain.Buff, error)
}

type service struct {
	repo repository.Buff
	now  func() time.Time
}

// NewService creates a new buff service
func NewService(repo repository.Buff) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) ActiveModifiers(ctx context.Context, playerID string) (domain.BuffModifiers, error) {
	buffs, err := s.ActiveBuffs(ctx, playerID)
	if err != nil {
		return domain.NeutralModifiers(), err
	}
	return Compose(buffs), nil
}

func (s *service) ActiveBuffs(ctx context.Context, playerID string) ([]domain.Buff, error) {
	now := s.now()

	// Lazy sweep: expired buffs are removed on read, not by a job
	if _, err := s.repo.DeleteExpiredBuffs(ctx, now); err != nil {
		logger.FromContext(ctx).Warn("Failed to purge expired buffs", "error", err)
	}

	buffs, err := s.repo.ActiveBuffs(ctx, playerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get active buffs: %w", err)
	}
	return buffs, nil
}

func (s *service) Grant(ctx context.Context, playerID string, xpBoost, claimBoost, rangeBoostM float64, duration time.Duration) (*domain.Buff, error) {
	log := logger.FromContext(ctx)

	b := &domain.Buff{
		ID:              uuid.NewString(),
		PlayerID:        playerID,
		XPMultiplier:    1 + xpBoost,
		ClaimMultiplier: 1 + claimBoost,
		RangeBonusM:     rangeBoostM,
		ExpiresAt:       s.now().Add(duration),
	}
	if err := s.repo.InsertBuff(ctx, b); err != nil {
		log.Error("Failed to grant buff", "player_id", playerID, "error", err)
		return nil, fmt.Errorf("failed to grant buff: %w", err)
	}

	log.Info("Buff granted",
		"player_id", playerID,
		"xp_multiplier", b.XPMultiplier,
		"claim_multiplier", b.ClaimMultiplier,
		"range_bonus_m", b.RangeBonusM,
		"expires_at", b.ExpiresAt)
	return b, nil
}

// Compose folds a buff list into one modifier set: multipliers
// multiply, range bonuses add.
func Compose(buffs []domain.Buff) domain.BuffModifiers {
	mods := domain.NeutralModifiers()
	for _, b := range buffs {
		mods.XPMultiplier *= b.XPMultiplier
		mods.ClaimMultiplier *= b.ClaimMultiplier
		mods.RangeBonusM += b.RangeBonusM
	}
	return mods
}
