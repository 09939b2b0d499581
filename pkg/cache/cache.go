package cache

import "time"

// Cache is the interface shared by the reference-price hint tracker and the
// notification dedup store. Entries expire by TTL; neither consumer removes
// entries explicitly.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with a TTL.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Close closes the cache and releases resources.
	Close()
}
