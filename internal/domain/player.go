package domain

import "time"

// Player represents a registered player
type Player struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	XP               int       `json:"xp"`
	Level            int       `json:"level"`
	TotalClaimPoints int       `json:"total_claim_points"`
	CreatedAt        time.Time `json:"created_at"`
}

// InventoryItem is one stack of an item held by a player
type InventoryItem struct {
	PlayerID   string    `json:"player_id"`
	ItemID     int       `json:"item_id"`
	Quantity   int       `json:"quantity"`
	AcquiredAt time.Time `json:"acquired_at"`
}
