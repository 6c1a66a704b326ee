package domain

import "time"

// Buff is a time-boxed modifier set granted by consuming an item
type Buff struct {
	ID              string    `json:"id"`
	PlayerID        string    `json:"player_id"`
	XPMultiplier    float64   `json:"xp_multiplier"`
	ClaimMultiplier float64   `json:"claim_multiplier"`
	RangeBonusM     float64   `json:"range_bonus_m"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// BuffModifiers is the composition of all active buffs for a player.
// Multipliers compose multiplicatively, range bonuses additively.
type BuffModifiers struct {
	XPMultiplier    float64 `json:"xp_multiplier"`
	ClaimMultiplier float64 `json:"claim_multiplier"`
	RangeBonusM     float64 `json:"range_bonus_m"`
}

// NeutralModifiers returns the identity modifier set
func NeutralModifiers() BuffModifiers {
	return BuffModifiers{XPMultiplier: 1.0, ClaimMultiplier: 1.0, RangeBonusM: 0.0}
}
