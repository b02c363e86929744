package domain

// Fixed lat/lon rectangle used to reject geocode results outside the
// serviced region.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the coordinate falls inside the box (inclusive).
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// Region describes the serviced area: the bounding box used to validate
// geocode results, the state name appended to ambiguous queries, and the
// city names recognized as end-of-street markers when extracting a
// street-only query variant.
type Region struct {
	Name   string
	State  string
	Box    BoundingBox
	Cities []string
}

// PhoenixEastValley is the default service area for the dispatch board.
func PhoenixEastValley() Region {
	return Region{
		Name:  "Phoenix East Valley",
		State: "Arizona",
		Box: BoundingBox{
			MinLat: 32.80,
			MaxLat: 34.00,
			MinLon: -112.90,
			MaxLon: -111.00,
		},
		Cities: []string{
			"Phoenix",
			"Mesa",
			"Gilbert",
			"Chandler",
			"Tempe",
			"Scottsdale",
			"Queen Creek",
			"Apache Junction",
			"San Tan Valley",
			"Gold Canyon",
			"Fountain Hills",
			"Paradise Valley",
			"Sun Lakes",
			"Maricopa",
			"Glendale",
			"Peoria",
		},
	}
}
