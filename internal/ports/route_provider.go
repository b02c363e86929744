package ports

import (
	"context"

	"dispatch-route-engine/internal/domain"
)

// Contract for retrieving a driveable road route for an ordered coordinate
// list.
type RouteProvider interface {
	// FetchRoute returns the road route through coords in order. Fewer
	// than two coordinates yields (nil, nil): there is no path to draw.
	FetchRoute(ctx context.Context, coords []domain.Coordinate) (*domain.RouteInfo, error)
}
