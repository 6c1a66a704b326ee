package progression

import (
	"context"
	"math"

	"github.com/geoclaim/geoclaim/internal/config"
)

// Curve is the level progression curve. The XP needed to advance from
// level n to n+1 is BaseXP + (n-1)*IncrementXP, so cumulative XP grows
// as an arithmetic series. Level 1 starts at 0 XP.
type Curve struct {
	BaseXP      int
	IncrementXP int
}

// DefaultCurve returns the compiled-in curve parameters
func DefaultCurve() Curve {
	return Curve{BaseXP: config.DefaultLevelXPBase, IncrementXP: config.DefaultLevelXPIncrement}
}

// CurveFromSettings builds the curve from live game settings
func CurveFromSettings(ctx context.Context, s *config.Settings) Curve {
	return Curve{
		BaseXP:      s.Int(ctx, config.SettingLevelXPBase, config.DefaultLevelXPBase),
		IncrementXP: s.Int(ctx, config.SettingLevelXPIncrement, config.DefaultLevelXPIncrement),
	}
}

// XPForLevel returns the cumulative XP required to reach level.
// Levels at or below 1 require no XP.
func (c Curve) XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return n*c.BaseXP + c.IncrementXP*n*(n-1)/2
}

// LevelFromXP returns the level a player with xp has reached.
// The quadratic closed form gives a candidate which is then corrected
// for integer truncation, so the result is exact for any curve.
func (c Curve) LevelFromXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	var level int
	if c.IncrementXP == 0 {
		if c.BaseXP <= 0 {
			return 1
		}
		level = xp/c.BaseXP + 1
	} else {
		// Solve n*base + inc*n*(n-1)/2 <= xp for n, then level = n+1.
		a := float64(c.IncrementXP) / 2
		b := float64(c.BaseXP) - a
		disc := b*b + 4*a*float64(xp)
		n := (-b + math.Sqrt(disc)) / (2 * a)
		level = int(n) + 1
	}
	if level < 1 {
		level = 1
	}
	for c.XPForLevel(level+1) <= xp {
		level++
	}
	for level > 1 && c.XPForLevel(level) > xp {
		level--
	}
	return level
}

// XPToNext returns the XP still missing before the next level
func (c Curve) XPToNext(xp int) int {
	next := c.XPForLevel(c.LevelFromXP(xp) + 1)
	return next - xp
}
