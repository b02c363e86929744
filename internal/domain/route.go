package domain

import "encoding/json"

// Driving route returned by the routing upstream for an ordered coordinate
// list. Geometry is the upstream's GeoJSON, passed through verbatim for map
// rendering. Degenerate inputs (fewer than two points) produce no RouteInfo
// at all; callers fall back to single-marker display.
type RouteInfo struct {
	DistanceMiles   float64         `json:"distance_miles"`
	DurationMinutes float64         `json:"duration_minutes"`
	Geometry        json.RawMessage `json:"geometry,omitempty"`
	Coordinates     []Coordinate    `json:"coordinates"`
}
