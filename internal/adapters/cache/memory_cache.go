package cache

import (
	"context"

	"dispatch-route-engine/internal/domain"
)

// MemoryGeocodeCache is a process-local cache with no durable store.
// Useful for local runs and tests.
type MemoryGeocodeCache struct {
	entries map[string]domain.GeocodeResult
}

func NewMemoryGeocodeCache() *MemoryGeocodeCache {
	return &MemoryGeocodeCache{entries: make(map[string]domain.GeocodeResult)}
}

func (c *MemoryGeocodeCache) Get(ctx context.Context, address string) (domain.GeocodeResult, bool, error) {
	res, ok := c.entries[address]
	return res, ok, nil
}

func (c *MemoryGeocodeCache) Set(ctx context.Context, address string, result domain.GeocodeResult) error {
	c.entries[address] = result
	return nil
}

func (c *MemoryGeocodeCache) Flush(ctx context.Context) error { return nil }
