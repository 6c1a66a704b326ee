package loot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/geoclaim/geoclaim/internal/config"
	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/event"
	"github.com/geoclaim/geoclaim/internal/geo"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/progression"
	"github.com/geoclaim/geoclaim/internal/repository"
	"github.com/geoclaim/geoclaim/internal/utils"
)

// Spawn tuning. Distances are meters, the payload XP range is
// inclusive on both ends.
const (
	SpawnMinDistanceM = 50.0
	SpawnMaxDistanceM = 300.0

	PayloadMinXP = 10
	PayloadMaxXP = 50

	MinLifetime = 5 * time.Minute
	MaxLifetime = 15 * time.Minute

	ItemAttachChance = 0.3
)

// Service defines the interface for loot lifecycle operations
type Service interface {
	// Spawn creates one loot spot near origin for the player.
	// Rejects when the player already has the maximum number of
	// unexpired loot spots.
	Spawn(ctx context.Context, ownerID string, origin domain.Coordinate, radiusM float64) (*domain.Spot, error)

	// Collect attempts a first-come-first-served collection of a loot
	// spot by any player. Exactly one concurrent collector succeeds.
	Collect(ctx context.Context, playerID, lootSpotID string, pos domain.Coordinate) (*domain.LootReward, error)

	// ActiveForOwner returns the player's unexpired loot spots
	ActiveForOwner(ctx context.Context, ownerID string) ([]domain.Spot, error)

	// ExpireStale removes every loot spot past its expiry and returns
	// how many were removed.
	ExpireStale(ctx context.Context) (int64, error)
}

type service struct {
	spots    repository.Spot
	players  repository.Player
	settings *config.Settings
	dist     geo.Distancer
	bus      event.Bus
	rnd      func() float64
	now      func() time.Time
}

// NewService creates a new loot service
func NewService(spots repository.Spot, players repository.Player, settings *config.Settings, dist geo.Distancer, bus event.Bus) Service {
	return &service{
		spots:    spots,
		players:  players,
		settings: settings,
		dist:     dist,
		bus:      bus,
		rnd:      utils.RandomFloat,
		now:      time.Now,
	}
}

func (s *service) Spawn(ctx context.Context, ownerID string, origin domain.Coordinate, radiusM float64) (*domain.Spot, error) {
	log := logger.FromContext(ctx)

	if !origin.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}
	if radiusM <= SpawnMinDistanceM {
		return nil, fmt.Errorf("%w: must exceed %.0fm", domain.ErrInvalidRadius, SpawnMinDistanceM)
	}

	now := s.now()
	maxActive := s.settings.Int(ctx, config.SettingLootMaxActive, config.DefaultLootMaxActive)
	active, err := s.spots.CountActiveLootForOwner(ctx, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count active loot: %w", err)
	}
	if active >= maxActive {
		return nil, domain.ErrLootLimitReached
	}

	location := s.rollLocation(origin, radiusM)
	payload := &domain.LootPayload{
		OwnerID:   ownerID,
		ExpiresAt: now.Add(s.rollLifetime()),
		XP:        s.rollXP(),
	}
	if s.rnd() < ItemAttachChance {
		if itemID, ok := s.rollItem(ctx); ok {
			payload.ItemID = &itemID
		}
	}

	sp := &domain.Spot{
		ID:        uuid.NewString(),
		Name:      "Loot cache",
		Location:  location,
		Type:      domain.SpotTypeStandard,
		Permanent: false,
		Loot:      payload,
		CreatedAt: now,
	}
	if err := s.spots.CreateSpot(ctx, sp); err != nil {
		log.Error("Failed to create loot spot", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to create loot spot: %w", err)
	}

	log.Info("Loot spawned",
		"spot_id", sp.ID,
		"owner_id", ownerID,
		"xp", payload.XP,
		"has_item", payload.ItemID != nil,
		"expires_at", payload.ExpiresAt)

	s.publish(ctx, event.NewLootSpawnedEvent(sp.ID, ownerID, location.Latitude, location.Longitude, payload.XP, payload.ItemID != nil, payload.ExpiresAt))
	return sp, nil
}

// rollLocation picks a uniform random bearing and a distance uniform
// in [SpawnMinDistanceM, min(SpawnMaxDistanceM, radiusM)].
func (s *service) rollLocation(origin domain.Coordinate, radiusM float64) domain.Coordinate {
	maxDist := math.Min(SpawnMaxDistanceM, radiusM)
	distance := SpawnMinDistanceM + s.rnd()*(maxDist-SpawnMinDistanceM)
	bearing := s.rnd() * 2 * math.Pi
	return geo.Offset(origin, bearing, distance)
}

func (s *service) rollLifetime() time.Duration {
	return MinLifetime + time.Duration(s.rnd()*float64(MaxLifetime-MinLifetime))
}

func (s *service) rollXP() int {
	return PayloadMinXP + int(s.rnd()*float64(PayloadMaxXP-PayloadMinXP+1))
}

// rollItem picks a random common item from the catalog
func (s *service) rollItem(ctx context.Context) (int, bool) {
	items, err := s.players.GetItemsByRarity(ctx, domain.RarityCommon)
	if err != nil || len(items) == 0 {
		return 0, false
	}
	idx := int(s.rnd() * float64(len(items)))
	if idx >= len(items) {
		idx = len(items) - 1
	}
	return items[idx].ID, true
}

func (s *service) Collect(ctx context.Context, playerID, lootSpotID string, pos domain.Coordinate) (*domain.LootReward, error) {
	log := logger.FromContext(ctx)

	sp, err := s.spots.GetSpot(ctx, lootSpotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loot spot: %w", err)
	}
	if sp == nil || !sp.IsLoot() {
		return nil, domain.ErrLootNotFound
	}

	now := s.now()
	if !sp.Loot.ExpiresAt.After(now) {
		// Remove it eagerly; the sweep would catch it anyway
		if _, err := s.spots.DeleteLootSpot(ctx, lootSpotID); err != nil {
			log.Warn("Failed to delete expired loot", "spot_id", lootSpotID, "error", err)
		}
		return nil, domain.ErrLootExpired
	}

	maxDist := s.settings.Float(ctx, config.SettingManualLogDistance, config.DefaultManualLogDistance)
	distance := s.dist.DistanceMeters(pos, sp.Location)
	if distance > maxDist {
		return nil, domain.ErrOutOfRange{Distance: distance, Max: maxDist}
	}

	reward, err := s.credit(ctx, playerID, sp)
	if err != nil {
		if !errors.Is(err, domain.ErrLootNotFound) {
			log.Error("Loot collection failed", "spot_id", lootSpotID, "player_id", playerID, "error", err)
		}
		return nil, err
	}

	log.Info("Loot collected",
		"spot_id", lootSpotID,
		"player_id", playerID,
		"owner_id", sp.Loot.OwnerID,
		"xp", reward.XP,
		"items", len(reward.Items))

	s.publish(ctx, event.NewLootCollectedEvent(lootSpotID, playerID, sp.Loot.OwnerID, reward.XP, sp.Loot.ItemID))
	return reward, nil
}

// credit elects the winner and applies the loot payload in one
// transaction. The conditional delete is the winner election: whoever
// deletes the row owns the reward, every other concurrent collector
// sees zero rows affected. A failed credit rolls the delete back so
// the loot stays collectible.
func (s *service) credit(ctx context.Context, playerID string, sp *domain.Spot) (*domain.LootReward, error) {
	tx, err := s.players.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	won, err := tx.DeleteLootSpot(ctx, sp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete loot spot: %w", err)
	}
	if !won {
		return nil, domain.ErrLootNotFound
	}

	player, err := tx.GetPlayerForUpdate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, domain.ErrPlayerNotFound
	}

	curve := progression.CurveFromSettings(ctx, s.settings)
	oldLevel := player.Level
	totalXP := player.XP + sp.Loot.XP
	newLevel := curve.LevelFromXP(totalXP)

	if err := tx.UpdatePlayerProgress(ctx, playerID, totalXP, newLevel, player.TotalClaimPoints); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	reward := &domain.LootReward{
		XP:        sp.Loot.XP,
		TotalXP:   totalXP,
		Level:     newLevel,
		LeveledUp: newLevel > oldLevel,
	}

	if sp.Loot.ItemID != nil {
		item, err := s.players.GetItem(ctx, *sp.Loot.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to get item: %w", err)
		}
		if item != nil {
			if err := tx.AddInventoryItem(ctx, playerID, item.ID, 1); err != nil {
				return nil, fmt.Errorf("failed to add item: %w", err)
			}
			reward.Items = append(reward.Items, *item)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	if reward.LeveledUp {
		s.publish(ctx, event.NewPlayerLevelUpEvent(playerID, oldLevel, newLevel, totalXP, "loot"))
	}
	return reward, nil
}

func (s *service) ActiveForOwner(ctx context.Context, ownerID string) ([]domain.Spot, error) {
	spots, err := s.spots.ActiveLootForOwner(ctx, ownerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get active loot: %w", err)
	}
	return spots, nil
}

func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	now := s.now()
	removed, err := s.spots.DeleteExpiredLoot(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire loot: %w", err)
	}
	if removed > 0 {
		logger.FromContext(ctx).Info("Expired stale loot", "spots_removed", removed)
		s.publish(ctx, event.NewLootExpiredEvent(now, removed))
	}
	return removed, nil
}

// publish emits an event without letting a sink failure affect the
// completed game-state mutation.
func (s *service) publish(ctx context.Context, e event.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event", "event_type", e.Type, "error", err)
	}
}
