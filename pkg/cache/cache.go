// Package cache provides a TTL cache for external lookups (geocoding,
// forecasts, market metadata) so repeat questions in the same scan cycle
// do not hammer providers.
package cache

import "time"

// Cache is a read-through TTL cache.
type Cache interface {
	// Get retrieves a value. Returns (value, true) when present.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL. Returns false when the entry was
	// dropped by admission policy.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value.
	Delete(key string)

	// Wait blocks until buffered writes have been applied. Sets are
	// asynchronous; a Get immediately after a Set may miss without it.
	Wait()

	// Close releases cache resources.
	Close()
}
