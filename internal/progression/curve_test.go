package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurve_XPForLevel(t *testing.T) {
	c := DefaultCurve()

	tests := []struct {
		name  string
		level int
		want  int
	}{
		{"level 1 is free", 1, 0},
		{"level 2 costs the base", 2, 100},
		{"level 3 adds one increment", 3, 210},
		{"level 4", 4, 330},
		{"level 11", 11, 1450},
		{"level zero clamps", 0, 0},
		{"negative level clamps", -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.XPForLevel(tt.level))
		})
	}
}

func TestCurve_LevelFromXP(t *testing.T) {
	c := DefaultCurve()

	tests := []struct {
		name string
		xp   int
		want int
	}{
		{"zero xp", 0, 1},
		{"negative xp", -50, 1},
		{"just below level 2", 99, 1},
		{"exactly level 2", 100, 2},
		{"just below level 3", 209, 2},
		{"exactly level 3", 210, 3},
		{"mid band", 250, 3},
		{"deep into the curve", 1450, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.LevelFromXP(tt.xp))
		})
	}
}

func TestCurve_RoundTrip(t *testing.T) {
	c := DefaultCurve()

	for level := 1; level <= 60; level++ {
		threshold := c.XPForLevel(level)
		assert.Equal(t, level, c.LevelFromXP(threshold), "threshold of level %d", level)
		if level > 1 {
			assert.Equal(t, level-1, c.LevelFromXP(threshold-1), "one xp short of level %d", level)
		}
	}
}

func TestCurve_MonotonicLevels(t *testing.T) {
	c := DefaultCurve()

	prev := 1
	for xp := 0; xp <= 5000; xp += 7 {
		level := c.LevelFromXP(xp)
		assert.GreaterOrEqual(t, level, prev, "level dropped at %d xp", xp)
		prev = level
	}
}

func TestCurve_FlatIncrement(t *testing.T) {
	c := Curve{BaseXP: 100, IncrementXP: 0}

	assert.Equal(t, 1, c.LevelFromXP(99))
	assert.Equal(t, 2, c.LevelFromXP(100))
	assert.Equal(t, 6, c.LevelFromXP(500))
	assert.Equal(t, 500, c.XPForLevel(6))
}

func TestCurve_XPToNext(t *testing.T) {
	c := DefaultCurve()

	assert.Equal(t, 100, c.XPToNext(0))
	assert.Equal(t, 1, c.XPToNext(99))
	assert.Equal(t, 110, c.XPToNext(100))
	assert.Equal(t, 60, c.XPToNext(150))
}
