package domain

import "time"

// Visit is an immutable record of one accepted spot interaction.
// The multipliers that were in effect are recorded for auditability
// and are never recomputed from history.
type Visit struct {
	ID              string     `json:"id"`
	PlayerID        string     `json:"player_id"`
	SpotID          string     `json:"spot_id"`
	Location        Coordinate `json:"location"`
	Distance        float64    `json:"distance_m"`
	Auto            bool       `json:"auto"`
	XPGained        int        `json:"xp_gained"`
	ClaimPoints     int        `json:"claim_points"`
	XPMultiplier    float64    `json:"xp_multiplier"`
	ClaimMultiplier float64    `json:"claim_multiplier"`
	Note            string     `json:"note,omitempty"`
	HasPhoto        bool       `json:"has_photo"`
	Timestamp       time.Time  `json:"timestamp"`
}

// LogStatus describes whether a player may currently log a spot
type LogStatus struct {
	CanAuto                 bool   `json:"can_auto"`
	AutoCooldownRemaining   int    `json:"auto_cooldown_remaining_s"`
	CanManual               bool   `json:"can_manual"`
	ManualCooldownRemaining int    `json:"manual_cooldown_remaining_s"`
	LastLogType             string `json:"last_log_type,omitempty"`
}

// Log type names reported in LogStatus
const (
	LogTypeAuto   = "auto"
	LogTypeManual = "manual"
)

// VisitResult is returned after an accepted visit
type VisitResult struct {
	Visit       Visit `json:"visit"`
	XPGained    int   `json:"xp_gained"`
	ClaimPoints int   `json:"claim_points"`
	TotalXP     int   `json:"total_xp"`
	Level       int   `json:"level"`
	LeveledUp   bool  `json:"leveled_up"`
	XPToNext    int   `json:"xp_to_next_level"`
}
