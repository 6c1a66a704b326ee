package domain

import "time"

// Coordinate is a WGS84 latitude/longitude pair
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is inside the WGS84 value range
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// SpotType categorizes a spot and carries reward multipliers
type SpotType string

// Supported spot types
const (
	SpotTypeStandard   SpotType = "standard"
	SpotTypeChurch     SpotType = "church"
	SpotTypeSight      SpotType = "sight"
	SpotTypeSports     SpotType = "sports_facility"
	SpotTypePlayground SpotType = "playground"
	SpotTypeMonument   SpotType = "monument"
	SpotTypeMuseum     SpotType = "museum"
	SpotTypeCastle     SpotType = "castle"
	SpotTypePark       SpotType = "park"
	SpotTypeViewpoint  SpotType = "viewpoint"
	SpotTypeHistoric   SpotType = "historic"
	SpotTypeCultural   SpotType = "cultural"
)

type spotTypeMultipliers struct {
	xp    float64
	claim float64
}

var spotTypeConfig = map[SpotType]spotTypeMultipliers{
	SpotTypeStandard:   {1.0, 1.0},
	SpotTypeChurch:     {1.5, 1.3},
	SpotTypeSight:      {2.0, 1.5},
	SpotTypeSports:     {1.3, 1.2},
	SpotTypePlayground: {1.2, 1.1},
	SpotTypeMonument:   {1.8, 1.4},
	SpotTypeMuseum:     {2.2, 1.6},
	SpotTypeCastle:     {2.5, 2.0},
	SpotTypePark:       {1.2, 1.1},
	SpotTypeViewpoint:  {1.7, 1.3},
	SpotTypeHistoric:   {1.9, 1.5},
	SpotTypeCultural:   {1.6, 1.3},
}

// XPMultiplier returns the XP multiplier for the spot type.
// Unknown types behave like standard spots.
func (t SpotType) XPMultiplier() float64 {
	if m, ok := spotTypeConfig[t]; ok {
		return m.xp
	}
	return 1.0
}

// ClaimMultiplier returns the claim-point multiplier for the spot type
func (t SpotType) ClaimMultiplier() float64 {
	if m, ok := spotTypeConfig[t]; ok {
		return m.claim
	}
	return 1.0
}

// LootPayload carries the reward attached to a loot spot
type LootPayload struct {
	OwnerID   string    `json:"owner_id"`
	ExpiresAt time.Time `json:"expires_at"`
	XP        int       `json:"xp"`
	ItemID    *int      `json:"item_id,omitempty"`
}

// Spot is a geographic point of interest, either a permanent landmark
// or an ephemeral loot spot. Loot spots carry a non-nil Loot payload.
type Spot struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Location    Coordinate   `json:"location"`
	Type        SpotType     `json:"type"`
	Permanent   bool         `json:"permanent"`
	Loot        *LootPayload `json:"loot,omitempty"`
	CreatorID   string       `json:"creator_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IsLoot reports whether the spot is an ephemeral loot spot
func (s *Spot) IsLoot() bool {
	return s.Loot != nil
}

// SpotWithDistance pairs a spot with its distance from a query point
type SpotWithDistance struct {
	Spot     Spot    `json:"spot"`
	Distance float64 `json:"distance_m"`
}
