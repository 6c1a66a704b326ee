package domain

// Item rarities
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Item is a collectible object. Consumable items carry boost effects
// that become a Buff when the item is used.
type Item struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Rarity      string  `json:"rarity"`
	Consumable  bool    `json:"consumable"`
	XPBoost     float64 `json:"xp_boost"`
	ClaimBoost  float64 `json:"claim_boost"`
	RangeBoostM float64 `json:"range_boost_m"`
	DurationS   int     `json:"duration_s"`
}

// LootReward is the payout of a successful loot collection
type LootReward struct {
	XP        int    `json:"xp"`
	Items     []Item `json:"items"`
	TotalXP   int    `json:"total_xp"`
	Level     int    `json:"level"`
	LeveledUp bool   `json:"leveled_up"`
}
