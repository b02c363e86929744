package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/platform/obs"
)

// DefaultBlobKey is the single Redis key holding the full serialized
// address -> GeocodeResult map.
const DefaultBlobKey = "dispatch:geocode-cache"

// RedisBlobCache keeps the working copy of the geocode cache in memory and
// persists it as one JSON blob under a single Redis key. The blob is
// loaded once at session start and overwritten wholesale on each Flush: a
// deliberate simplicity/throughput tradeoff, not an incremental write.
//
// Reads and writes between awaited upstream calls come from exactly one
// logical writer (batch resolution is sequential), so the in-memory map
// needs no locking.
type RedisBlobCache struct {
	client  *redis.Client
	key     string
	entries map[string]domain.GeocodeResult
}

func NewRedisBlobCache(client *redis.Client, key string) *RedisBlobCache {
	if key == "" {
		key = DefaultBlobKey
	}
	return &RedisBlobCache{
		client:  client,
		key:     key,
		entries: make(map[string]domain.GeocodeResult),
	}
}

// Load replaces the in-memory map with the persisted blob. A missing key
// starts an empty cache.
func (c *RedisBlobCache) Load(ctx context.Context) (err error) {
	defer obs.Time(ctx, "geocode.cache.Load")(&err)

	payload, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.entries = make(map[string]domain.GeocodeResult)
			return nil
		}
		return fmt.Errorf("load geocode cache: redis get %q: %w", c.key, err)
	}

	entries := make(map[string]domain.GeocodeResult)
	if err := json.Unmarshal(payload, &entries); err != nil {
		return fmt.Errorf("load geocode cache: unmarshal blob: %w", err)
	}

	c.entries = entries
	return nil
}

func (c *RedisBlobCache) Get(ctx context.Context, address string) (domain.GeocodeResult, bool, error) {
	res, ok := c.entries[address]
	return res, ok, nil
}

func (c *RedisBlobCache) Set(ctx context.Context, address string, result domain.GeocodeResult) error {
	if address == "" {
		return errors.New("geocode cache: empty address key")
	}
	c.entries[address] = result
	return nil
}

// Flush overwrites the persisted blob with the full in-memory map.
func (c *RedisBlobCache) Flush(ctx context.Context) error {
	payload, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("flush geocode cache: marshal blob: %w", err)
	}

	if err := c.client.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("flush geocode cache: redis set %q: %w", c.key, err)
	}

	return nil
}

// Snapshot returns a copy of the in-memory map, for export tooling.
func (c *RedisBlobCache) Snapshot() map[string]domain.GeocodeResult {
	out := make(map[string]domain.GeocodeResult, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Replace swaps in a new full map without persisting it; callers follow up
// with Flush.
func (c *RedisBlobCache) Replace(entries map[string]domain.GeocodeResult) {
	if entries == nil {
		entries = make(map[string]domain.GeocodeResult)
	}
	c.entries = entries
}
