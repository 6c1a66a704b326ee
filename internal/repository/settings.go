package repository

import "context"

// Settings defines the interface for game setting storage.
// GetSetting returns the empty string for keys that are not set.
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
