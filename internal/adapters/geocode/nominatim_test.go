package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/ports"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	c, err := NewClient("dispatch-route-engine-test/1.0", domain.PhoenixEastValley(),
		WithBaseURL(baseURL),
		WithMinInterval(time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.initialBackoff = time.Millisecond
	return c
}

func TestSearchSuccess(t *testing.T) {
	var gotQuery, gotUserAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUserAgent = r.Header.Get("User-Agent")

		if r.URL.Query().Get("format") != "json" || r.URL.Query().Get("limit") != "1" {
			t.Errorf("unexpected query params: %v", r.URL.Query())
		}

		w.Write([]byte(`[{"lat":"33.4152","lon":"-111.8315"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	coord, err := c.Search(context.Background(), "425 N Vineyard, Mesa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if coord.Lat != 33.4152 || coord.Lon != -111.8315 {
		t.Errorf("coord = %+v", coord)
	}
	if gotUserAgent == "" {
		t.Error("identifying User-Agent header is required")
	}
	if !strings.Contains(gotQuery, "Arizona") {
		t.Errorf("regional disambiguator not appended: %q", gotQuery)
	}
}

func TestSearchKeepsExistingStateHint(t *testing.T) {
	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[{"lat":"33.4152","lon":"-111.8315"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	if _, err := c.Search(context.Background(), "425 N Vineyard, Mesa, AZ 85201"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gotQuery, "Arizona") {
		t.Errorf("disambiguator appended to a query that already has a state hint: %q", gotQuery)
	}
}

func TestSearchLocalityRewrite(t *testing.T) {
	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[{"lat":"33.2487","lon":"-111.6343"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	if _, err := c.Search(context.Background(), "100 W Combs Rd, San Tan Valley, AZ"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(gotQuery, "San Tan Valley") {
		t.Errorf("locality rewrite not applied: %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "Queen Creek") {
		t.Errorf("rewritten locality missing: %q", gotQuery)
	}
}

func TestSearchRetryBound(t *testing.T) {
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.Search(context.Background(), "425 N Vineyard, Mesa")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	// 2 retries after the initial attempt, then the candidate is abandoned.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestSearchRateLimitedThenSuccess(t *testing.T) {
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"lat":"33.4152","lon":"-111.8315"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	coord, err := c.Search(context.Background(), "425 N Vineyard, Mesa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (one retry after 429)", attempts)
	}
	if coord.Lat != 33.4152 {
		t.Errorf("coord = %+v", coord)
	}
}

func TestSearchEmptyResultIsNotFound(t *testing.T) {
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.Search(context.Background(), "nowhere in particular")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (a miss is terminal, not retried)", attempts)
	}
}

func TestSearchOutOfRegionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Denver, well outside the East Valley box.
		w.Write([]byte(`[{"lat":"39.7392","lon":"-104.9903"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.Search(context.Background(), "1 Main St, Mesa")
	if !errors.Is(err, ports.ErrOutOfRegion) {
		t.Fatalf("err = %v, want ErrOutOfRegion", err)
	}
}

func TestSearchClientTimeoutRetried(t *testing.T) {
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := NewClient("dispatch-route-engine-test/1.0", domain.PhoenixEastValley(),
		WithBaseURL(srv.URL),
		WithMinInterval(time.Millisecond),
		WithHTTPClient(&http.Client{Timeout: 5 * time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.initialBackoff = time.Millisecond

	_, err = c.Search(context.Background(), "425 N Vineyard, Mesa")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	// The client's own timeout is a transient upstream failure, not
	// caller cancellation: the full retry budget applies.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (hung upstream must be retried)", attempts)
	}
}

func TestSearchContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.initialBackoff = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, "425 N Vineyard, Mesa")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}
