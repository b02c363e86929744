package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/platform/obs"
	"dispatch-route-engine/internal/ports"
)

// Matches a pasted "lat,lon" literal, e.g. "33.4484,-112.0740".
var coordLiteralExpr = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// Resolver turns free-text addresses into coordinates.
//
// It coordinates:
//   - A durable address -> result cache (successes and failures alike)
//   - Literal-coordinate short-circuiting
//   - Candidate query generation for malformed addresses
//   - The rate-limited geocoding client
//
// Batch resolution is strictly sequential: the upstream enforces an
// informal one-request-per-second policy, and concurrent lookups risk
// sustained 429s that degrade the whole session.
type Resolver struct {
	geocoder ports.Geocoder
	cache    ports.GeocodeCache
	region   domain.Region
	variants *variantGenerator
}

func NewResolver(geocoder ports.Geocoder, cache ports.GeocodeCache, region domain.Region) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		cache:    cache,
		region:   region,
		variants: newVariantGenerator(region),
	}
}

// Resolve geocodes a batch of raw addresses and returns results in input
// order, duplicates included. Addresses already cached are served without
// an upstream call; every freshly resolved result, success or failure, is
// written through the cache before the next address is attempted.
func (r *Resolver) Resolve(ctx context.Context, addresses []string) (_ []domain.GeocodeResult, err error) {
	defer obs.Time(ctx, "resolver.Resolve")(&err)

	results := make([]domain.GeocodeResult, len(addresses))
	resolved := make(map[string]domain.GeocodeResult, len(addresses))

	for i, addr := range addresses {
		if prev, ok := resolved[addr]; ok {
			results[i] = prev
			continue
		}

		res, err := r.ResolveOne(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", addr, err)
		}

		resolved[addr] = res
		results[i] = res
	}

	return results, nil
}

// ResolveOne resolves a single raw address. The returned error reports
// infrastructure problems only (cache failures, cancellation); a failed
// lookup is a successful call whose result carries an error message, and
// it is cached as a permanent negative entry.
func (r *Resolver) ResolveOne(ctx context.Context, address string) (domain.GeocodeResult, error) {
	if cached, ok, err := r.cache.Get(ctx, address); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("cache get: %w", err)
	} else if ok {
		return cached, nil
	}

	result := r.lookup(ctx, address)
	if err := ctx.Err(); err != nil {
		// A cancelled lookup must not poison the cache with a partial
		// negative entry.
		return domain.GeocodeResult{}, err
	}

	if err := r.cache.Set(ctx, address, result); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("cache set: %w", err)
	}
	if err := r.cache.Flush(ctx); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("cache flush: %w", err)
	}

	return result, nil
}

func (r *Resolver) lookup(ctx context.Context, address string) domain.GeocodeResult {
	// Literal-coordinate short-circuit: no network call at all.
	if coord, ok := parseCoordinateLiteral(address); ok {
		if !r.region.Box.Contains(coord) {
			log.Printf("resolver literal coordinate outside region addr=%q lat=%f lon=%f", address, coord.Lat, coord.Lon)
		}
		return domain.GeocodeResult{Coordinate: &coord}
	}

	candidates := r.variants.Candidates(address)
	if len(candidates) == 0 {
		return domain.GeocodeResult{Err: "empty address"}
	}

	var lastErr error
	for _, query := range candidates {
		coord, err := r.geocoder.Search(ctx, query)
		if err == nil {
			return domain.GeocodeResult{Coordinate: &coord}
		}
		// Only the caller's context aborts the lookup; the empty result
		// is discarded by ResolveOne's cancellation guard, never cached.
		// A timeout inside the client surfaces as a normal error and is
		// recorded like any other failure.
		if ctx.Err() != nil {
			return domain.GeocodeResult{}
		}
		// Both a miss and an out-of-region match mean "try the next
		// candidate"; transient upstream errors were already retried
		// inside the client.
		lastErr = err
	}

	return domain.GeocodeResult{Err: lastErr.Error()}
}

// parseCoordinateLiteral accepts "number,number" when both components are
// a valid latitude/longitude pair.
func parseCoordinateLiteral(s string) (domain.Coordinate, bool) {
	m := coordLiteralExpr.FindStringSubmatch(s)
	if m == nil {
		return domain.Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return domain.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return domain.Coordinate{}, false
	}

	coord := domain.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return domain.Coordinate{}, false
	}

	return coord, true
}
