package config

import "time"

// Game setting keys. Values live in the game_settings table and can be
// changed at runtime; a missing or malformed value falls back to the
// compiled default below.
const (
	SettingAutoLogDistance   = "auto_log_distance"
	SettingManualLogDistance = "manual_log_distance"
	SettingLogCooldown       = "log_cooldown"
	SettingClaimDecayRate    = "claim_decay_rate"
	SettingLevelXPBase       = "level_xp_base"
	SettingLevelXPIncrement  = "level_xp_increment"
	SettingLootMaxActive     = "loot_max_active"

	SettingAutoLogXP          = "auto_log_xp"
	SettingAutoLogClaim       = "auto_log_claim"
	SettingManualLogXP        = "manual_log_xp"
	SettingManualLogClaim     = "manual_log_claim"
	SettingAttachmentBonusXP  = "attachment_bonus_xp"
	SettingAttachmentBonusClm = "attachment_bonus_claim"
)

// Compiled defaults for game settings
const (
	DefaultAutoLogDistance   = 20.0  // meters
	DefaultManualLogDistance = 100.0 // meters
	DefaultLogCooldown       = 300 * time.Second
	DefaultClaimDecayRate    = 0.01 // claim value per hour
	DefaultLevelXPBase       = 100
	DefaultLevelXPIncrement  = 10
	DefaultLootMaxActive     = 5

	DefaultAutoLogXP          = 10
	DefaultAutoLogClaim       = 5
	DefaultManualLogXP        = 50
	DefaultManualLogClaim     = 25
	DefaultAttachmentBonusXP  = 25
	DefaultAttachmentBonusClm = 10
)

// Settings cache tuning
const (
	SettingsCacheSize = 64
	SettingsCacheTTL  = 30 * time.Second
)
