package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Player errors
	ErrMsgPlayerNotFound = "player not found"
	ErrMsgUsernameTaken  = "username already taken"

	// Spot errors
	ErrMsgSpotNotFound = "spot not found"

	// Item/inventory errors
	ErrMsgItemNotFound   = "item not found"
	ErrMsgNotInInventory = "item not in inventory"
	ErrMsgNotConsumable  = "item is not consumable"

	// Loot errors
	ErrMsgLootNotFound     = "loot spot not found"
	ErrMsgLootExpired      = "loot expired"
	ErrMsgLootLimitReached = "too many active loot spots"

	// Validation errors
	ErrMsgInvalidCoordinate = "invalid coordinates"
	ErrMsgInvalidRadius     = "invalid radius"
	ErrMsgInvalidInput      = "invalid input"
)

// Common domain errors
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrPlayerNotFound = errors.New(ErrMsgPlayerNotFound)
	ErrUsernameTaken  = errors.New(ErrMsgUsernameTaken)

	ErrSpotNotFound = errors.New(ErrMsgSpotNotFound)

	ErrItemNotFound   = errors.New(ErrMsgItemNotFound)
	ErrNotInInventory = errors.New(ErrMsgNotInInventory)
	ErrNotConsumable  = errors.New(ErrMsgNotConsumable)

	ErrLootNotFound     = errors.New(ErrMsgLootNotFound)
	ErrLootExpired      = errors.New(ErrMsgLootExpired)
	ErrLootLimitReached = errors.New(ErrMsgLootLimitReached)

	ErrInvalidCoordinate = errors.New(ErrMsgInvalidCoordinate)
	ErrInvalidRadius     = errors.New(ErrMsgInvalidRadius)
	ErrInvalidInput      = errors.New(ErrMsgInvalidInput)
)

// ErrCooldownActive is returned when a visit is blocked by the cooldown window
type ErrCooldownActive struct {
	Remaining time.Duration
}

func (e ErrCooldownActive) Error() string {
	minutes := int(e.Remaining.Minutes())
	seconds := int(e.Remaining.Seconds()) % 60
	return fmt.Sprintf("cooldown active: %dm%ds remaining", minutes, seconds)
}

// Is allows errors.Is() to work with ErrCooldownActive
func (e ErrCooldownActive) Is(target error) bool {
	_, ok := target.(ErrCooldownActive)
	return ok
}

// ErrOutOfRange is returned when the player is too far from the spot
type ErrOutOfRange struct {
	Distance float64
	Max      float64
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("too far away (distance %.0fm, max %.0fm)", e.Distance, e.Max)
}

// Is allows errors.Is() to work with ErrOutOfRange
func (e ErrOutOfRange) Is(target error) bool {
	_, ok := target.(ErrOutOfRange)
	return ok
}
