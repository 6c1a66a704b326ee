package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Common event types
const (
	VisitLogged        Type = "visit.logged"
	PlayerLevelUp      Type = "player.level_up"
	PlayerRegistered   Type = "player.registered"
	ClaimUpdated       Type = "claim.updated"
	ClaimDecayComplete Type = "claim.decay_complete"
	LootSpawned        Type = "loot.spawned"
	LootCollected      Type = "loot.collected"
	LootExpired        Type = "loot.expired"
	BuffGranted        Type = "buff.granted"
)

// Typed event payloads for type safety

// VisitLoggedPayloadV1 is the typed payload for visit events
type VisitLoggedPayloadV1 struct {
	PlayerID    string `json:"player_id"`
	SpotID      string `json:"spot_id"`
	Auto        bool   `json:"auto"`
	XPGained    int    `json:"xp_gained"`
	ClaimPoints int    `json:"claim_points"`
	Timestamp   int64  `json:"timestamp"`
}

// PlayerLevelUpPayloadV1 is the typed payload for level up events
type PlayerLevelUpPayloadV1 struct {
	PlayerID string `json:"player_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
	TotalXP  int    `json:"total_xp"`
	Source   string `json:"source,omitempty"`
}

// PlayerRegisteredPayloadV1 is the typed payload for registration events
type PlayerRegisteredPayloadV1 struct {
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

// ClaimUpdatedPayloadV1 is the typed payload for claim growth events
type ClaimUpdatedPayloadV1 struct {
	PlayerID    string  `json:"player_id"`
	SpotID      string  `json:"spot_id"`
	ClaimValue  float64 `json:"claim_value"`
	Dominance   float64 `json:"dominance"`
	PointsAdded int     `json:"points_added"`
}

// ClaimDecayCompletePayloadV1 is the typed payload for decay sweep events
type ClaimDecayCompletePayloadV1 struct {
	SweepTime     time.Time `json:"sweep_time"`
	ClaimsTouched int64     `json:"claims_touched"`
}

// LootSpawnedPayloadV1 is the typed payload for loot spawn events
type LootSpawnedPayloadV1 struct {
	SpotID    string  `json:"spot_id"`
	OwnerID   string  `json:"owner_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	XP        int     `json:"xp"`
	HasItem   bool    `json:"has_item"`
	ExpiresAt int64   `json:"expires_at"`
}

// LootCollectedPayloadV1 is the typed payload for loot collection events
type LootCollectedPayloadV1 struct {
	SpotID      string `json:"spot_id"`
	CollectorID string `json:"collector_id"`
	OwnerID     string `json:"owner_id"`
	XP          int    `json:"xp"`
	ItemID      *int   `json:"item_id,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// LootExpiredPayloadV1 is the typed payload for loot expiry sweeps
type LootExpiredPayloadV1 struct {
	SweepTime    time.Time `json:"sweep_time"`
	SpotsRemoved int64     `json:"spots_removed"`
}

// BuffGrantedPayloadV1 is the typed payload for buff grant events
type BuffGrantedPayloadV1 struct {
	PlayerID        string  `json:"player_id"`
	ItemID          int     `json:"item_id"`
	XPMultiplier    float64 `json:"xp_multiplier"`
	ClaimMultiplier float64 `json:"claim_multiplier"`
	RangeBonusM     float64 `json:"range_bonus_m"`
	ExpiresAt       int64   `json:"expires_at"`
}

// Type-safe event constructors

// NewVisitLoggedEvent creates a new visit logged event
func NewVisitLoggedEvent(playerID, spotID string, auto bool, xpGained, claimPoints int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    VisitLogged,
		Payload: VisitLoggedPayloadV1{
			PlayerID:    playerID,
			SpotID:      spotID,
			Auto:        auto,
			XPGained:    xpGained,
			ClaimPoints: claimPoints,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewPlayerLevelUpEvent creates a new level up event
func NewPlayerLevelUpEvent(playerID string, oldLevel, newLevel, totalXP int, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PlayerLevelUp,
		Payload: PlayerLevelUpPayloadV1{
			PlayerID: playerID,
			OldLevel: oldLevel,
			NewLevel: newLevel,
			TotalXP:  totalXP,
			Source:   source,
		},
		Metadata: map[string]interface{}{
			"source": source,
		},
	}
}

// NewPlayerRegisteredEvent creates a new registration event
func NewPlayerRegisteredEvent(playerID, username string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PlayerRegistered,
		Payload: PlayerRegisteredPayloadV1{
			PlayerID:  playerID,
			Username:  username,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewClaimUpdatedEvent creates a new claim growth event
func NewClaimUpdatedEvent(playerID, spotID string, claimValue, dominance float64, pointsAdded int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ClaimUpdated,
		Payload: ClaimUpdatedPayloadV1{
			PlayerID:    playerID,
			SpotID:      spotID,
			ClaimValue:  claimValue,
			Dominance:   dominance,
			PointsAdded: pointsAdded,
		},
		Metadata: nil,
	}
}

// NewClaimDecayCompleteEvent creates a new decay sweep event
func NewClaimDecayCompleteEvent(sweepTime time.Time, claimsTouched int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ClaimDecayComplete,
		Payload: ClaimDecayCompletePayloadV1{
			SweepTime:     sweepTime,
			ClaimsTouched: claimsTouched,
		},
		Metadata: nil,
	}
}

// NewLootSpawnedEvent creates a new loot spawn event
func NewLootSpawnedEvent(spotID, ownerID string, lat, lon float64, xp int, hasItem bool, expiresAt time.Time) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LootSpawned,
		Payload: LootSpawnedPayloadV1{
			SpotID:    spotID,
			OwnerID:   ownerID,
			Latitude:  lat,
			Longitude: lon,
			XP:        xp,
			HasItem:   hasItem,
			ExpiresAt: expiresAt.Unix(),
		},
		Metadata: nil,
	}
}

// NewLootCollectedEvent creates a new loot collection event
func NewLootCollectedEvent(spotID, collectorID, ownerID string, xp int, itemID *int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LootCollected,
		Payload: LootCollectedPayloadV1{
			SpotID:      spotID,
			CollectorID: collectorID,
			OwnerID:     ownerID,
			XP:          xp,
			ItemID:      itemID,
			Timestamp:   time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewLootExpiredEvent creates a new loot expiry sweep event
func NewLootExpiredEvent(sweepTime time.Time, spotsRemoved int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LootExpired,
		Payload: LootExpiredPayloadV1{
			SweepTime:    sweepTime,
			SpotsRemoved: spotsRemoved,
		},
		Metadata: nil,
	}
}

// NewBuffGrantedEvent creates a new buff grant event
func NewBuffGrantedEvent(playerID string, itemID int, xpMult, claimMult, rangeBonus float64, expiresAt time.Time) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BuffGranted,
		Payload: BuffGrantedPayloadV1{
			PlayerID:        playerID,
			ItemID:          itemID,
			XPMultiplier:    xpMult,
			ClaimMultiplier: claimMult,
			RangeBonusM:     rangeBonus,
			ExpiresAt:       expiresAt.Unix(),
		},
		Metadata: nil,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers run synchronously; slow consumers should dispatch to
	// their own goroutines.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
