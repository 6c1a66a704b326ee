package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/geoclaim/geoclaim/internal/config"
	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/geo"
	"github.com/geoclaim/geoclaim/internal/repository"
)

// Gate decides whether a visit attempt may be accepted. Cooldown and
// distance are independent checks: the cooldown compares against the
// player's visit history at the spot, the distance compares the
// player's reported position against the spot location.
//
// The cooldown is asymmetric. An auto visit is blocked by any visit
// within the window, auto or manual. A manual visit is blocked only by
// a previous manual visit, so passive auto-detection never throttles
// deliberate engagement.
type Gate struct {
	visits   repository.VisitLog
	settings *config.Settings
	dist     geo.Distancer
	now      func() time.Time
}

// New creates a visit gate
func New(visits repository.VisitLog, settings *config.Settings, dist geo.Distancer) *Gate {
	return NewWithClock(visits, settings, dist, time.Now)
}

// NewWithClock creates a visit gate with an injected clock
func NewWithClock(visits repository.VisitLog, settings *config.Settings, dist geo.Distancer, now func() time.Time) *Gate {
	return &Gate{visits: visits, settings: settings, dist: dist, now: now}
}

func (g *Gate) window(ctx context.Context) time.Duration {
	return g.settings.Duration(ctx, config.SettingLogCooldown, config.DefaultLogCooldown)
}

// Check validates one visit attempt and returns the measured distance
// to the spot. It returns ErrCooldownActive or ErrOutOfRange when the
// attempt must be rejected.
func (g *Gate) Check(ctx context.Context, playerID string, spot *domain.Spot, pos domain.Coordinate, isAuto bool, mods domain.BuffModifiers) (float64, error) {
	if remaining, err := g.cooldownRemaining(ctx, playerID, spot.ID, isAuto); err != nil {
		return 0, err
	} else if remaining > 0 {
		return 0, domain.ErrCooldownActive{Remaining: remaining}
	}

	distance := g.dist.DistanceMeters(pos, spot.Location)
	threshold := g.threshold(ctx, isAuto, mods)
	if distance > threshold {
		return 0, domain.ErrOutOfRange{Distance: distance, Max: threshold}
	}
	return distance, nil
}

func (g *Gate) threshold(ctx context.Context, isAuto bool, mods domain.BuffModifiers) float64 {
	if isAuto {
		return g.settings.Float(ctx, config.SettingAutoLogDistance, config.DefaultAutoLogDistance)
	}
	// Range buffs widen only the manual radius
	return g.settings.Float(ctx, config.SettingManualLogDistance, config.DefaultManualLogDistance) + mods.RangeBonusM
}

// cooldownRemaining returns how long until the given kind of visit is
// allowed again, zero when it is allowed now.
func (g *Gate) cooldownRemaining(ctx context.Context, playerID, spotID string, isAuto bool) (time.Duration, error) {
	kinds := []string{domain.LogTypeManual}
	if isAuto {
		kinds = nil // any prior visit blocks an auto attempt
	}

	last, err := g.visits.LastVisit(ctx, playerID, spotID, kinds...)
	if err != nil {
		return 0, fmt.Errorf("failed to get last visit: %w", err)
	}
	if last == nil {
		return 0, nil
	}

	remaining := g.window(ctx) - g.now().Sub(last.Timestamp)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Status reports both cooldowns for a player at a spot, remaining time
// in whole seconds clamped to zero.
func (g *Gate) Status(ctx context.Context, playerID, spotID string) (domain.LogStatus, error) {
	autoRemaining, err := g.cooldownRemaining(ctx, playerID, spotID, true)
	if err != nil {
		return domain.LogStatus{}, err
	}
	manualRemaining, err := g.cooldownRemaining(ctx, playerID, spotID, false)
	if err != nil {
		return domain.LogStatus{}, err
	}

	status := domain.LogStatus{
		CanAuto:                 autoRemaining == 0,
		AutoCooldownRemaining:   ceilSeconds(autoRemaining),
		CanManual:               manualRemaining == 0,
		ManualCooldownRemaining: ceilSeconds(manualRemaining),
	}

	last, err := g.visits.LastVisit(ctx, playerID, spotID)
	if err != nil {
		return domain.LogStatus{}, fmt.Errorf("failed to get last visit: %w", err)
	}
	if last != nil {
		status.LastLogType = domain.LogTypeManual
		if last.Auto {
			status.LastLogType = domain.LogTypeAuto
		}
	}
	return status, nil
}

// ceilSeconds converts a remaining duration to whole seconds, never
// reporting zero while any time is left.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
