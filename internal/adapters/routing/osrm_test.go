package routing

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dispatch-route-engine/internal/domain"
)

func TestFetchRouteDegenerateInputs(t *testing.T) {
	c := NewClient("http://unused.invalid")

	info, err := c.FetchRoute(context.Background(), nil)
	if err != nil || info != nil {
		t.Errorf("empty input: got (%+v, %v), want (nil, nil)", info, err)
	}

	info, err = c.FetchRoute(context.Background(), []domain.Coordinate{{Lat: 33.4, Lon: -111.8}})
	if err != nil || info != nil {
		t.Errorf("single point: got (%+v, %v), want (nil, nil)", info, err)
	}
}

func TestFetchRouteSuccess(t *testing.T) {
	var gotPath, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 16093.4,
				"duration": 1200,
				"geometry": {"type":"LineString","coordinates":[[-111.9,33.4],[-111.8,33.41]]}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	coords := []domain.Coordinate{
		{Lat: 33.40, Lon: -111.90},
		{Lat: 33.41, Lon: -111.80},
	}

	info, err := c.FetchRoute(context.Background(), coords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info == nil {
		t.Fatal("expected route info")
	}

	// Coordinates are sent lon,lat and joined by semicolons.
	if !strings.Contains(gotPath, "/route/v1/driving/-111.9,33.4;-111.8,33.41") {
		t.Errorf("request path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "overview=full") || !strings.Contains(gotQuery, "geometries=geojson") {
		t.Errorf("request query = %q", gotQuery)
	}

	// 16093.4 m is ten miles; 1200 s is twenty minutes.
	if math.Abs(info.DistanceMiles-10.0) > 0.01 {
		t.Errorf("DistanceMiles = %f, want ~10", info.DistanceMiles)
	}
	if math.Abs(info.DurationMinutes-20.0) > 0.001 {
		t.Errorf("DurationMinutes = %f, want 20", info.DurationMinutes)
	}
	if len(info.Geometry) == 0 {
		t.Error("geometry must be passed through")
	}
	if len(info.Coordinates) != 2 {
		t.Errorf("Coordinates = %v", info.Coordinates)
	}
}

func TestFetchRouteUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	info, err := c.FetchRoute(context.Background(), []domain.Coordinate{
		{Lat: 33.40, Lon: -111.90},
		{Lat: 33.41, Lon: -111.80},
	})
	if err == nil {
		t.Fatal("expected error on upstream failure")
	}
	if info != nil {
		t.Errorf("info = %+v, want nil", info)
	}
}

func TestFetchRouteNoRouteInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	if _, err := c.FetchRoute(context.Background(), []domain.Coordinate{
		{Lat: 33.40, Lon: -111.90},
		{Lat: 33.41, Lon: -111.80},
	}); err == nil {
		t.Fatal("expected error when upstream returns no route")
	}
}
