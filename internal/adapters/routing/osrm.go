package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dispatch-route-engine/internal/domain"
)

const DefaultBaseURL = "https://router.project-osrm.org"

const (
	milesPerMeter    = 0.000621371
	minutesPerSecond = 1.0 / 60.0
)

// Client fetches driving routes from an OSRM-compatible /route/v1
// endpoint. Route geometry is returned as GeoJSON for map display.
type Client struct {
	baseURL string
	session *http.Client
	profile string
}

func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: &http.Client{Timeout: 15 * time.Second},
		profile: "driving",
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64         `json:"distance"`
		Duration float64         `json:"duration"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

// FetchRoute requests the road route through coords in order. Fewer than
// two coordinates returns (nil, nil): there is no path to draw and the
// caller falls back to a single marker.
func (c *Client) FetchRoute(ctx context.Context, coords []domain.Coordinate) (*domain.RouteInfo, error) {
	if len(coords) < 2 {
		return nil, nil
	}

	var path strings.Builder
	for i, coord := range coords {
		if i > 0 {
			path.WriteByte(';')
		}
		// OSRM expects lon,lat order.
		path.WriteString(strconv.FormatFloat(coord.Lon, 'f', -1, 64))
		path.WriteByte(',')
		path.WriteString(strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	}

	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%s?overview=full&geometries=geojson",
		c.baseURL, c.profile, path.String(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create route request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("route request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode route response: %w", err)
	}

	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return nil, errors.New("route request: no route in response")
	}

	route := decoded.Routes[0]
	return &domain.RouteInfo{
		DistanceMiles:   route.Distance * milesPerMeter,
		DurationMinutes: route.Duration * minutesPerSecond,
		Geometry:        route.Geometry,
		Coordinates:     coords,
	}, nil
}
