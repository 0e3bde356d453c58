// Package cache stores recognizer answers in memory so repeated texts skip the oracle.
package cache

import (
	"context"
	"time"
)

// Store is the key/value contract used by recognizer.Cached.
type Store interface {
	// Get returns the value stored under key and whether it is still live.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key. A non-positive ttl selects the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate drops key, or every key with the given prefix when pattern ends in "*".
	Invalidate(ctx context.Context, pattern string) error
}

// Stats is a point-in-time snapshot of cache usage.
type Stats struct {
	Size      int   `json:"size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
