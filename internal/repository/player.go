package repository

import (
	"context"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// Player defines the interface for player data access
type Player interface {
	CreatePlayer(ctx context.Context, player *domain.Player) error
	GetPlayer(ctx context.Context, id string) (*domain.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error)
	UpdatePlayerProgress(ctx context.Context, id string, xp, level, totalClaimPoints int) error

	// Inventory operations
	GetInventory(ctx context.Context, playerID string) ([]domain.InventoryItem, error)
	AddInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error
	RemoveInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error

	// Item catalog
	GetItem(ctx context.Context, id int) (*domain.Item, error)
	GetItemsByRarity(ctx context.Context, rarity string) ([]domain.Item, error)

	// Transaction support
	BeginTx(ctx context.Context) (PlayerTx, error)
}

// PlayerTx extends Tx with player-specific transactional operations
type PlayerTx interface {
	Tx

	GetPlayerForUpdate(ctx context.Context, id string) (*domain.Player, error)
	UpdatePlayerProgress(ctx context.Context, id string, xp, level, totalClaimPoints int) error
	AddInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error
	RemoveInventoryItem(ctx context.Context, playerID string, itemID, quantity int) error
	InsertBuff(ctx context.Context, buff *domain.Buff) error

	// DeleteLootSpot removes a loot spot inside the credit
	// transaction. Reports whether a row was removed; a rollback
	// restores the spot.
	DeleteLootSpot(ctx context.Context, spotID string) (bool, error)
}
