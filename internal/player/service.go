package player

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geoclaim/geoclaim/internal/config"
	"github.com/geoclaim/geoclaim/internal/domain"
	"github.com/geoclaim/geoclaim/internal/event"
	"github.com/geoclaim/geoclaim/internal/logger"
	"github.com/geoclaim/geoclaim/internal/progression"
	"github.com/geoclaim/geoclaim/internal/repository"
)

// Username constraints
const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// Profile pairs a player with derived progression data
type Profile struct {
	Player   domain.Player `json:"player"`
	XPToNext int           `json:"xp_to_next_level"`
}

// Service defines the interface for player operations
type Service interface {
	// Register creates a new player with a unique username
	Register(ctx context.Context, username string) (*domain.Player, error)

	// GetProfile returns a player with progression context
	GetProfile(ctx context.Context, id string) (*Profile, error)

	// Inventory returns the player's item stacks
	Inventory(ctx context.Context, playerID string) ([]domain.InventoryItem, error)

	// UseItem consumes one unit of a consumable item and grants its
	// buff to the player.
	UseItem(ctx context.Context, playerID string, itemID int) (*domain.Buff, error)
}

type service struct {
	repo     repository.Player
	settings *config.Settings
	bus      event.Bus
	now      func() time.Time
}

// NewService creates a new player service
func NewService(repo repository.Player, settings *config.Settings, bus event.Bus) Service {
	return &service{repo: repo, settings: settings, bus: bus, now: time.Now}
}

func (s *service) Register(ctx context.Context, username string) (*domain.Player, error) {
	log := logger.FromContext(ctx)

	// Usernames are stored case-folded so "Foo" and "foo" are the
	// same player. The alphabet is ASCII, ToLower is enough.
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen || !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be %d-%d characters of letters, digits, underscore, dot or dash",
			domain.ErrInvalidInput, MinUsernameLen, MaxUsernameLen)
	}

	existing, err := s.repo.GetPlayerByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	p := &domain.Player{
		ID:        uuid.NewString(),
		Username:  username,
		Level:     1,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreatePlayer(ctx, p); err != nil {
		log.Error("Failed to create player", "username", username, "error", err)
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	log.Info("Player registered", "player_id", p.ID, "username", username)
	s.publish(ctx, event.NewPlayerRegisteredEvent(p.ID, username))
	return p, nil
}

func (s *service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	p, err := s.repo.GetPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if p == nil {
		return nil, domain.ErrPlayerNotFound
	}

	curve := progression.CurveFromSettings(ctx, s.settings)
	return &Profile{Player: *p, XPToNext: curve.XPToNext(p.XP)}, nil
}

func (s *service) Inventory(ctx context.Context, playerID string) ([]domain.InventoryItem, error) {
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if p == nil {
		return nil, domain.ErrPlayerNotFound
	}
	items, err := s.repo.GetInventory(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return items, nil
}

func (s *service) UseItem(ctx context.Context, playerID string, itemID int) (*domain.Buff, error) {
	log := logger.FromContext(ctx)

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	if !item.Consumable {
		return nil, domain.ErrNotConsumable
	}

	now := s.now()
	b := &domain.Buff{
		ID:              uuid.NewString(),
		PlayerID:        playerID,
		XPMultiplier:    1 + item.XPBoost,
		ClaimMultiplier: 1 + item.ClaimBoost,
		RangeBonusM:     item.RangeBoostM,
		ExpiresAt:       now.Add(time.Duration(item.DurationS) * time.Second),
	}

	// Consume and grant atomically so a failed insert cannot eat the
	// item without the buff landing.
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.RemoveInventoryItem(ctx, playerID, itemID, 1); err != nil {
		return nil, err
	}
	if err := tx.InsertBuff(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to insert buff: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	log.Info("Item consumed",
		"player_id", playerID,
		"item_id", itemID,
		"item", item.Name,
		"expires_at", b.ExpiresAt)

	s.publish(ctx, event.NewBuffGrantedEvent(playerID, itemID, b.XPMultiplier, b.ClaimMultiplier, b.RangeBonusM, b.ExpiresAt))
	return b, nil
}

func (s *service) publish(ctx context.Context, e event.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish event", "event_type", e.Type, "error", err)
	}
}
