package config

import (
	"context"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/geoclaim/geoclaim/internal/logger"
)

// SettingsStore is the persistence interface for game settings.
// GetSetting returns ("", nil) when the key has no stored value.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// Settings provides typed, cached access to runtime game tunables.
// Lookups fall back to compiled defaults when a key is absent or
// malformed; a store error is treated the same way so a flaky database
// never fails a request over a tunable.
type Settings struct {
	store SettingsStore
	cache *expirable.LRU[string, string]
}

// NewSettings creates a Settings provider backed by store.
// The short cache TTL is what makes edits hot-reloadable.
func NewSettings(store SettingsStore) *Settings {
	return &Settings{
		store: store,
		cache: expirable.NewLRU[string, string](SettingsCacheSize, nil, SettingsCacheTTL),
	}
}

func (s *Settings) raw(ctx context.Context, key string) (string, bool) {
	if v, ok := s.cache.Get(key); ok {
		return v, v != ""
	}

	v, err := s.store.GetSetting(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to read game setting, using default", "key", key, "error", err)
		return "", false
	}

	// Negative entries are cached too so absent keys don't hit the store
	// on every request.
	s.cache.Add(key, v)
	return v, v != ""
}

// Float returns the setting as float64, or def when absent or malformed
func (s *Settings) Float(ctx context.Context, key string, def float64) float64 {
	v, ok := s.raw(ctx, key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.FromContext(ctx).Warn("Malformed game setting, using default", "key", key, "value", v)
		return def
	}
	return f
}

// Int returns the setting as int, or def when absent or malformed
func (s *Settings) Int(ctx context.Context, key string, def int) int {
	v, ok := s.raw(ctx, key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.FromContext(ctx).Warn("Malformed game setting, using default", "key", key, "value", v)
		return def
	}
	return i
}

// Duration returns the setting (stored in whole seconds) as a Duration
func (s *Settings) Duration(ctx context.Context, key string, def time.Duration) time.Duration {
	v, ok := s.raw(ctx, key)
	if !ok {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		logger.FromContext(ctx).Warn("Malformed game setting, using default", "key", key, "value", v)
		return def
	}
	return time.Duration(secs) * time.Second
}

// Invalidate drops a cached value so the next read hits the store.
// Used by the admin settings endpoint after a write.
func (s *Settings) Invalidate(key string) {
	s.cache.Remove(key)
}
