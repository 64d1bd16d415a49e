package cache

import "time"

// Cache is the interface for short-lived in-process caches, such as the
// best-quote cache in front of Redis.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (any, bool)

	// Set stores a value in the cache with a TTL. Admission is
	// probabilistic, so a successful Set does not guarantee a later hit.
	Set(key string, value any, ttl time.Duration) bool

	// Clear removes all values from the cache.
	Clear()

	// Close closes the cache and releases resources.
	Close()
}
