package visit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geoclaim/geoclaim/internal/buff"
	"github.com/geoclaim/geoclaim/internal/claim"
	"github.com/geoclaim/geoclaim/internal/config"
	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/event"
	"github.com/geoclaim/geoclaim/internal/gate"
	"github.com/geoclaim/geoclaim/internal/geo"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/metrics"
	"github.com/geoclaim/geoclaim/internal/progression"
	"github.com/geoclaim/geoclaim/internal/repository"
	"github.com/geoclaim/geoclaim/internal/reward"
)

// DefaultHistoryLimit caps history queries
const DefaultHistoryLimit = 50

// Request is one visit attempt
type Request struct {
	PlayerID string
	SpotID   string
	Position domain.Coordinate
	Auto     bool
	Note     string
	HasPhoto bool
}

// HasAttachment reports whether the visit carries a note or photo
func (r Request) HasAttachment() bool {
	return r.Note != "" || r.HasPhoto
}

// Service defines the interface for visit operations
type Service interface {
	// Log validates and applies one visit attempt
	Log(ctx context.Context, req Request) (*domain.VisitResult, error)

	// Status reports the player's cooldown state at a spot
	Status(ctx context.Context, playerID, spotID string) (*domain.LogStatus, error)

	// PlayerHistory returns the player's recent visits, newest first
	PlayerHistory(ctx context.Context, playerID string, limit int) ([]domain.Visit, error)

	// SpotHistory returns a spot's recent visits, newest first
	SpotHistory(ctx context.Context, spotID string, limit int) ([]domain.Visit, error)
}

type service struct {
	spots    repository.Spot
	visits   repository.VisitLog
	buffs    buff.Service
	gate     *gate.Gate
	settings *config.Settings
	dist     geo.Distancer
	bus      event.Bus
	now      func() time.Time
}

// NewService creates a new visit service
func NewService(spots repository.Spot, visits repository.VisitLog, buffs buff.Service, g *gate.Gate, settings *config.Settings, dist geo.Distancer, bus event.Bus) Service {
	return &service{
		spots:    spots,
		visits:   visits,
		buffs:    buffs,
		gate:     g,
		settings: settings,
		dist:     dist,
		bus:      bus,
		now:      time.Now,
	}
}

func (s *service) Log(ctx context.Context, req Request) (*domain.VisitResult, error) {
	log := logger.FromContext(ctx)

	if !req.Position.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}

	sp, err := s.spots.GetSpot(ctx, req.SpotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot: %w", err)
	}
	// Loot spots are collected, not visited
	if sp == nil || sp.IsLoot() {
		return nil, domain.ErrSpotNotFound
	}

	mods, err := s.buffs.ActiveModifiers(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}

	distance, err := s.gate.Check(ctx, req.PlayerID, sp, req.Position, req.Auto, mods)
	if err != nil {
		s.recordRejection(req.Auto, err)
		return nil, err
	}

	in, err := s.rewardInput(ctx, req, sp, mods)
	if err != nil {
		return nil, err
	}
	res := reward.Compute(in)

	now := s.now()
	v := &domain.Visit{
		ID:              uuid.NewString(),
		PlayerID:        req.PlayerID,
		SpotID:          req.SpotID,
		Location:        req.Position,
		Distance:        distance,
		Auto:            req.Auto,
		XPGained:        res.XP,
		ClaimPoints:     res.ClaimPoints,
		XPMultiplier:    mods.XPMultiplier * sp.Type.XPMultiplier(),
		ClaimMultiplier: mods.ClaimMultiplier * sp.Type.ClaimMultiplier(),
		Note:            req.Note,
		HasPhoto:        req.HasPhoto,
		Timestamp:       now,
	}

	result, c, oldLevel, err := s.apply(ctx, v, now)
	if err != nil {
		return nil, err
	}

	log.Info("Visit logged",
		"player_id", req.PlayerID,
		"spot_id", req.SpotID,
		"auto", req.Auto,
		"distance_m", distance,
		"xp_gained", res.XP,
		"claim_points", res.ClaimPoints,
		"leveled_up", result.LeveledUp)

	s.publish(ctx, event.NewVisitLoggedEvent(req.PlayerID, req.SpotID, req.Auto, res.XP, res.ClaimPoints))
	s.publish(ctx, event.NewClaimUpdatedEvent(req.PlayerID, req.SpotID, c.ClaimValue, c.Dominance, res.ClaimPoints))
	if result.LeveledUp {
		s.publish(ctx, event.NewPlayerLevelUpEvent(req.PlayerID, oldLevel, result.Level, result.TotalXP, "visit"))
	}
	return result, nil
}

// rewardInput assembles the reward computation from configuration and
// the player's visit history.
func (s *service) rewardInput(ctx context.Context, req Request, sp *domain.Spot, mods domain.BuffModifiers) (reward.Input, error) {
	in := reward.Input{
		Buffs:               mods,
		SpotXPMultiplier:    sp.Type.XPMultiplier(),
		SpotClaimMultiplier: sp.Type.ClaimMultiplier(),
	}

	if req.Auto {
		in.BaseXP = s.settings.Float(ctx, config.SettingAutoLogXP, config.DefaultAutoLogXP)
		in.BaseClaim = s.settings.Float(ctx, config.SettingAutoLogClaim, config.DefaultAutoLogClaim)
	} else {
		in.BaseXP = s.settings.Float(ctx, config.SettingManualLogXP, config.DefaultManualLogXP)
		in.BaseClaim = s.settings.Float(ctx, config.SettingManualLogClaim, config.DefaultManualLogClaim)
		if req.HasAttachment() {
			in.BaseXP += s.settings.Float(ctx, config.SettingAttachmentBonusXP, config.DefaultAttachmentBonusXP)
			in.BaseClaim += s.settings.Float(ctx, config.SettingAttachmentBonusClm, config.DefaultAttachmentBonusClm)
		}
	}

	lastHere, err := s.visits.LastVisit(ctx, req.PlayerID, req.SpotID)
	if err != nil {
		return in, fmt.Errorf("failed to get visit history: %w", err)
	}
	if lastHere == nil {
		in.FirstVisit = true
	} else {
		in.SinceLast = s.now().Sub(lastHere.Timestamp)
	}

	lastAnywhere, err := s.visits.LastVisitAnywhere(ctx, req.PlayerID)
	if err != nil {
		return in, fmt.Errorf("failed to get visit history: %w", err)
	}
	if lastAnywhere != nil {
		in.MoveDistM = s.dist.DistanceMeters(lastAnywhere.Location, req.Position)
	}
	return in, nil
}

// apply commits the visit, the player's progress and the claim growth
// in one transaction. The cooldown is re-checked on the locked visit
// row so two near-simultaneous attempts cannot both land.
func (s *service) apply(ctx context.Context, v *domain.Visit, now time.Time) (*domain.VisitResult, *domain.Claim, int, error) {
	tx, err := s.visits.BeginTx(ctx)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	player, err := tx.GetPlayerForUpdate(ctx, v.PlayerID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, nil, 0, domain.ErrPlayerNotFound
	}

	kinds := []string{domain.LogTypeManual}
	if v.Auto {
		kinds = nil
	}
	last, err := tx.GetLastVisitForUpdate(ctx, v.PlayerID, v.SpotID, kinds...)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to get last visit: %w", err)
	}
	if last != nil {
		window := s.settings.Duration(ctx, config.SettingLogCooldown, config.DefaultLogCooldown)
		if remaining := window - now.Sub(last.Timestamp); remaining > 0 {
			return nil, nil, 0, domain.ErrCooldownActive{Remaining: remaining}
		}
	}

	if err := tx.InsertVisit(ctx, v); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to insert visit: %w", err)
	}

	curve := progression.CurveFromSettings(ctx, s.settings)
	oldLevel := player.Level
	totalXP := player.XP + v.XPGained
	newLevel := curve.LevelFromXP(totalXP)
	totalClaim := player.TotalClaimPoints + v.ClaimPoints
	if err := tx.UpdatePlayerProgress(ctx, v.PlayerID, totalXP, newLevel, totalClaim); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to update player: %w", err)
	}

	c, err := tx.GetClaimForUpdate(ctx, v.PlayerID, v.SpotID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to get claim: %w", err)
	}
	if c == nil {
		c = &domain.Claim{PlayerID: v.PlayerID, SpotID: v.SpotID, LastDecay: now}
	} else {
		rate := s.settings.Float(ctx, config.SettingClaimDecayRate, config.DefaultClaimDecayRate)
		claim.Decay(c, now, rate)
	}
	claim.Grow(c, v.ClaimPoints, now)
	if err := tx.UpsertClaim(ctx, c); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to upsert claim: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to commit: %w", err)
	}

	return &domain.VisitResult{
		Visit:       *v,
		XPGained:    v.XPGained,
		ClaimPoints: v.ClaimPoints,
		TotalXP:     totalXP,
		Level:       newLevel,
		LeveledUp:   newLevel > oldLevel,
		XPToNext:    curve.XPToNext(totalXP),
	}, c, oldLevel, nil
}

func (s *service) Status(ctx context.Context, playerID, spotID string) (*domain.LogStatus, error) {
	sp, err := s.spots.GetSpot(ctx, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot: %w", err)
	}
	if sp == nil || sp.IsLoot() {
		return nil, domain.ErrSpotNotFound
	}

	status, err := s.gate.Status(ctx, playerID, spotID)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *service) PlayerHistory(ctx context.Context, playerID string, limit int) ([]domain.Visit, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	return s.visits.VisitsByPlayer(ctx, playerID, limit)
}

func (s *service) SpotHistory(ctx context.Context, spotID string, limit int) ([]domain.Visit, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	return s.visits.VisitsBySpot(ctx, spotID, limit)
}

func (s *service) recordRejection(isAuto bool, err error) {
	kind := domain.LogTypeManual
	if isAuto {
		kind = domain.LogTypeAuto
	}
	switch {
	case errors.Is(err, domain.ErrCooldownActive{}):
		metrics.VisitsRejected.WithLabelValues(kind, metrics.ReasonCooldown).Inc()
	case errors.Is(err, domain.ErrOutOfRange{}):
		metrics.VisitsRejected.WithLabelValues(kind, metrics.ReasonOutOfRange).Inc()
	}
}

// publish emits an event; sink failures never roll back the visit
func (s *service) publish(ctx context.Context, e event.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event", "event_type", e.Type, "error", err)
	}
}
