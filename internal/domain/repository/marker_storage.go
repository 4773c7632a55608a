package repository

import "context"

// MarkerStorage is a small key-value store for idempotency latches: the daily
// sync gate marker and the once-per-period XP dedupe keys. Backed by Redis in
// production and by an in-memory map in tests.
type MarkerStorage interface {
	// Get returns the stored value for key, or "" when absent
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key
	Set(ctx context.Context, key, value string) error
}
