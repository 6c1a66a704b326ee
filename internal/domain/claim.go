package domain

import "time"

// DominanceRatio is the fraction of claim points contributed to dominance
const DominanceRatio = 0.1

// Claim is a player's accumulated ownership stake at a spot.
// ClaimValue and Dominance never go negative; decay clamps at zero.
type Claim struct {
	PlayerID   string    `json:"player_id"`
	SpotID     string    `json:"spot_id"`
	ClaimValue float64   `json:"claim_value"`
	Dominance  float64   `json:"dominance"`
	LastLog    time.Time `json:"last_log"`
	LastDecay  time.Time `json:"last_decay"`
}

// ClaimRanking is one row of a spot's ownership leaderboard
type ClaimRanking struct {
	PlayerID   string    `json:"player_id"`
	Username   string    `json:"username"`
	ClaimValue float64   `json:"claim_value"`
	Dominance  float64   `json:"dominance"`
	LastLog    time.Time `json:"last_log"`
}
