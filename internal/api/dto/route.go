package dto

import "encoding/json"

type RouteRequest struct {
	Coordinates []CoordinateDTO `json:"coordinates"`
}

type RouteInfoResponse struct {
	DistanceMiles   float64         `json:"distance_miles"`
	DurationMinutes float64         `json:"duration_minutes"`
	Geometry        json.RawMessage `json:"geometry,omitempty"`
	Coordinates     []CoordinateDTO `json:"coordinates"`
}

// Route is null when the routing upstream is unavailable or the input is
// degenerate; the board falls back to marker-only display.
type RouteResponse struct {
	Route *RouteInfoResponse `json:"route"`
}
