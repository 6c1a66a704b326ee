package claim

import (
	"context"
	"fmt"
	"time"

	"github.com/geoclaim/geoclaim/internal/config"
	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/event"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/metrics"
	"github.com/geoclaim/geoclaim/internal/repository"
)

// DefaultRankingLimit caps leaderboard queries
const DefaultRankingLimit = 20

// Service defines the interface for claim ledger operations
type Service interface {
	// SpotRankings returns the ownership leaderboard for a spot,
	// strongest claim first.
	SpotRankings(ctx context.Context, spotID string, limit int) ([]domain.ClaimRanking, error)

	// PlayerClaims returns every claim the player holds
	PlayerClaims(ctx context.Context, playerID string) ([]domain.Claim, error)

	// ApplyDecay runs one decay sweep over all claims and returns the
	// number of claims touched.
	ApplyDecay(ctx context.Context) (int64, error)
}

type service struct {
	repo     repository.Claim
	settings *config.Settings
	bus      event.Bus
	now      func() time.Time
}

// NewService creates a new claim service
func NewService(repo repository.Claim, settings *config.Settings, bus event.Bus) Service {
	return &service{repo: repo, settings: settings, bus: bus, now: time.Now}
}

func (s *service) SpotRankings(ctx context.Context, spotID string, limit int) ([]domain.ClaimRanking, error) {
	if limit <= 0 || limit > DefaultRankingLimit {
		limit = DefaultRankingLimit
	}
	rankings, err := s.repo.ClaimsBySpot(ctx, spotID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot rankings: %w", err)
	}
	return rankings, nil
}

func (s *service) PlayerClaims(ctx context.Context, playerID string) ([]domain.Claim, error) {
	claims, err := s.repo.ClaimsByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player claims: %w", err)
	}
	return claims, nil
}

func (s *service) ApplyDecay(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)
	rate := s.settings.Float(ctx, config.SettingClaimDecayRate, config.DefaultClaimDecayRate)

	touched, err := s.repo.DecayClaims(ctx, s.now(), rate)
	if err != nil {
		log.Error("Claim decay sweep failed", "error", err)
		return 0, fmt.Errorf("failed to decay claims: %w", err)
	}

	metrics.ClaimDecaySweeps.Inc()
	log.Info("Claim decay sweep complete", "claims_touched", touched, "rate_per_hour", rate)

	if touched > 0 && s.bus != nil {
		e := event.NewClaimDecayCompleteEvent(s.now(), touched)
		if err := s.bus.Publish(ctx, e); err != nil {
			log.Warn("Failed to publish event", "event_type", e.Type, "error", err)
		}
	}
	return touched, nil
}

// Grow adds an accepted visit's claim points to a claim.
// Dominance tracks claim value at a fixed ratio so the two decay in
// lockstep.
func Grow(c *domain.Claim, points int, now time.Time) {
	c.ClaimValue += float64(points)
	c.Dominance += float64(points) * domain.DominanceRatio
	c.LastLog = now
}

// Decay applies hours-elapsed decay to a claim in memory. The
// repository performs the same arithmetic set-based in SQL; this form
// is used when a single claim is read inside a visit transaction.
func Decay(c *domain.Claim, now time.Time, ratePerHour float64) {
	hours := now.Sub(c.LastDecay).Hours()
	if hours <= 0 {
		return
	}
	loss := hours * ratePerHour
	c.ClaimValue -= loss
	if c.ClaimValue < 0 {
		c.ClaimValue = 0
	}
	c.Dominance -= loss * domain.DominanceRatio
	if c.Dominance < 0 {
		c.Dominance = 0
	}
	c.LastDecay = now
}
