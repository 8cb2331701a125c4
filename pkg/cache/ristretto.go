package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// RistrettoCache is a Cache backed by ristretto.
type RistrettoCache struct {
	cache  *ristretto.Cache
	logger *zap.Logger
}

// RistrettoConfig holds ristretto tuning knobs.
type RistrettoConfig struct {
	NumCounters int64 // keys to track for frequency (10x max items)
	MaxCost     int64 // max items (cost 1 per entry)
	BufferItems int64 // keys per Get buffer
	Logger      *zap.Logger
}

// NewRistrettoCache creates a ristretto-backed cache.
func NewRistrettoCache(cfg *RistrettoConfig) (Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	return &RistrettoCache{cache: c, logger: cfg.Logger}, nil
}

// Get retrieves a value from the cache.
func (r *RistrettoCache) Get(key string) (interface{}, bool) {
	value, found := r.cache.Get(key)
	if found {
		HitsTotal.Inc()
	} else {
		MissesTotal.Inc()
	}
	return value, found
}

// Set stores a value with a TTL, cost 1 per entry.
func (r *RistrettoCache) Set(key string, value interface{}, ttl time.Duration) bool {
	ok := r.cache.SetWithTTL(key, value, 1, ttl)
	if !ok {
		r.logger.Debug("cache-set-dropped", zap.String("key", key))
	}
	return ok
}

// Delete removes a value.
func (r *RistrettoCache) Delete(key string) {
	r.cache.Del(key)
}

// Wait blocks until the set buffer has been drained.
func (r *RistrettoCache) Wait() {
	r.cache.Wait()
}

// Close releases cache resources.
func (r *RistrettoCache) Close() {
	r.cache.Close()
}
