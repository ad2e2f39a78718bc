// Package cache stores fetched document bodies keyed by URL. A refresh
// run that rediscovers a URL within the TTL reuses the cached body
// instead of re-fetching, which keeps repeated runs cheap and polite.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented store with per-entry TTLs.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a URL. Hashing keeps keys filesystem-safe
// and uniform-length; the version segment invalidates everything when the
// cached representation changes.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "pulsegraph:v1:" + hex.EncodeToString(hash[:])
}
