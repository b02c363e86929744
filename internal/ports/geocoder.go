package ports

import (
	"context"
	"errors"

	"dispatch-route-engine/internal/domain"
)

// Terminal lookup outcomes. Both mean "try the next candidate query";
// OutOfRegion exists so logs can distinguish a miss from a match outside
// the serviced bounding box.
var (
	ErrNotFound    = errors.New("no geocode results")
	ErrOutOfRegion = errors.New("geocode result outside service region")
)

// Contract for forward-geocoding a single query string.
type Geocoder interface {
	// Search resolves one query to a coordinate. Transient upstream
	// failures are retried internally; the returned error is terminal
	// for this query (ErrNotFound, ErrOutOfRegion, or the last upstream
	// error after the retry budget is spent).
	Search(ctx context.Context, query string) (domain.Coordinate, error)
}
