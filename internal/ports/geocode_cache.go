package ports

import (
	"context"

	"dispatch-route-engine/internal/domain"
)

// Port: durable address -> GeocodeResult cache. The raw address string is
// the key; at most one entry exists per distinct key, and entries are never
// evicted mid-session. Negative results (resolution failures) are cached
// the same as successes.
type GeocodeCache interface {
	// Get returns the cached result for an address and whether it exists.
	Get(ctx context.Context, address string) (domain.GeocodeResult, bool, error)
	// Set stores one result under the raw address key.
	Set(ctx context.Context, address string, result domain.GeocodeResult) error
	// Flush persists the full map to the durable store. Implementations
	// that persist on Set may treat this as a no-op.
	Flush(ctx context.Context) error
}
