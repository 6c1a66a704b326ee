package reward

import (
	"math"
	"time"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// Novelty multiplier bands, keyed on time since the previous visit to
// the same spot. A first-ever visit counts as maximally novel.
const (
	NoveltyFreshGap  = 7 * 24 * time.Hour
	NoveltyRestedGap = 24 * time.Hour

	NoveltyFresh  = 1.6
	NoveltyRested = 1.25
	NoveltyNone   = 1.0
)

// Repetition (diminishing returns) bands on the same gap. Novelty and
// repetition are independent axes; both always apply.
const (
	RepetitionRapidGap  = 10 * time.Minute
	RepetitionQuickGap  = time.Hour
	RepetitionRecentGap = 24 * time.Hour

	RepetitionRapid  = 0.15
	RepetitionQuick  = 0.45
	RepetitionRecent = 0.75
	RepetitionNone   = 1.0
)

// Movement bonus: flat XP per MovementUnitM meters travelled since the
// player's previous visit anywhere, capped at MovementBonusMax.
const (
	MovementUnitM    = 120.0
	MovementBonusMax = 18
)

// Input carries everything one reward computation depends on.
// BaseXP and BaseClaim already include any attachment bonus.
type Input struct {
	BaseXP    float64
	BaseClaim float64

	// FirstVisit is true when the player has never visited this spot;
	// SinceLast is ignored in that case.
	FirstVisit bool
	SinceLast  time.Duration

	// MoveDistM is the straight-line distance from the player's
	// previous visit location, anywhere, to the current position.
	MoveDistM float64

	Buffs domain.BuffModifiers

	SpotXPMultiplier    float64
	SpotClaimMultiplier float64
}

// Result is the reward for one accepted visit, with the factors that
// produced it so callers can record them on the visit.
type Result struct {
	XP          int
	ClaimPoints int

	Novelty       float64
	Repetition    float64
	MovementBonus int
}

// NoveltyMultiplier returns the XP multiplier for a visit gap
func NoveltyMultiplier(firstVisit bool, sinceLast time.Duration) float64 {
	switch {
	case firstVisit, sinceLast >= NoveltyFreshGap:
		return NoveltyFresh
	case sinceLast >= NoveltyRestedGap:
		return NoveltyRested
	default:
		return NoveltyNone
	}
}

// RepetitionMultiplier returns the diminishing-returns multiplier for
// a visit gap
func RepetitionMultiplier(firstVisit bool, sinceLast time.Duration) float64 {
	if firstVisit {
		return RepetitionNone
	}
	switch {
	case sinceLast < RepetitionRapidGap:
		return RepetitionRapid
	case sinceLast < RepetitionQuickGap:
		return RepetitionQuick
	case sinceLast < RepetitionRecentGap:
		return RepetitionRecent
	default:
		return RepetitionNone
	}
}

// MovementBonus returns the flat XP earned for moving since the
// previous visit, clamped to [0, MovementBonusMax]
func MovementBonus(moveDistM float64) int {
	if moveDistM <= 0 {
		return 0
	}
	bonus := int(math.Round(moveDistM / MovementUnitM))
	if bonus > MovementBonusMax {
		return MovementBonusMax
	}
	return bonus
}

// Compute turns one visit's context into XP and claim points.
// Order matters: novelty and repetition scale the XP base, the
// movement bonus is added flat, then buff and spot multipliers scale
// the running totals.
func Compute(in Input) Result {
	novelty := NoveltyMultiplier(in.FirstVisit, in.SinceLast)
	repetition := RepetitionMultiplier(in.FirstVisit, in.SinceLast)
	movement := MovementBonus(in.MoveDistM)

	xp := in.BaseXP * novelty * repetition
	xp += float64(movement)
	xp *= in.Buffs.XPMultiplier
	xp *= in.SpotXPMultiplier

	claim := in.BaseClaim
	claim *= in.Buffs.ClaimMultiplier
	claim *= in.SpotClaimMultiplier

	return Result{
		XP:            clampRound(xp),
		ClaimPoints:   clampRound(claim),
		Novelty:       novelty,
		Repetition:    repetition,
		MovementBonus: movement,
	}
}

func clampRound(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	return n
}
