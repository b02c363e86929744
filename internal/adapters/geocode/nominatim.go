package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/ports"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Upstream enforces an informal 1-request-per-second policy; pacing a
// little slower keeps a long resolve batch out of sustained 429s.
const defaultMinInterval = 1200 * time.Millisecond

// Retry budget for one query: 2 retries after the initial attempt, with
// exponential backoff starting at 1s.
const (
	maxAttempts           = 3
	defaultInitialBackoff = 1 * time.Second
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Client is a forward-geocoding client for a Nominatim-compatible
// /search endpoint. Every request waits on a shared token bucket, so a
// batch of candidate queries is paced without ad hoc sleeps at call sites.
type Client struct {
	baseURL        string
	session        *http.Client
	userAgent      string
	limiter        *rate.Limiter
	initialBackoff time.Duration
	region         domain.Region
	hintExpr       *regexp.Regexp
	rewriteOld     string
	rewriteNew     string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(n *Client) {
		if c != nil {
			n.session = c
		}
	}
}

func WithMinInterval(d time.Duration) Option {
	return func(n *Client) {
		if d > 0 {
			n.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(n *Client) {
		if strings.TrimSpace(baseURL) != "" {
			n.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// NewClient builds a client for the given region. userAgent is required by
// the upstream's usage policy and is sent on every request.
func NewClient(userAgent string, region domain.Region, opts ...Option) (*Client, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("nominatim client: user agent is required")
	}

	c := &Client{
		baseURL:        DefaultBaseURL,
		session:        &http.Client{Timeout: 10 * time.Second},
		userAgent:      userAgent,
		limiter:        rate.NewLimiter(rate.Every(defaultMinInterval), 1),
		initialBackoff: defaultInitialBackoff,
		region:         region,
		// Matches an existing state hint ("AZ" or "Arizona") so the
		// regional disambiguator is only appended when absent.
		hintExpr: regexp.MustCompile(`(?i)\b(?:AZ|` + regexp.QuoteMeta(region.State) + `)\b`),
		// San Tan Valley is unincorporated and most of it is filed under
		// Queen Creek in the upstream data set.
		rewriteOld: "San Tan Valley",
		rewriteNew: "Queen Creek",
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// prepareQuery appends the regional disambiguator when the query carries no
// state hint and applies the documented locality rewrite.
func (c *Client) prepareQuery(q string) string {
	if old := c.rewriteOld; old != "" && containsFold(q, old) {
		q = replaceFold(q, old, c.rewriteNew)
	}
	if !c.hintExpr.MatchString(q) {
		q = q + ", " + c.region.State
	}
	return q
}

// Search resolves one query string. 429/503 responses, other non-2xx
// statuses, and network errors are retried with exponential backoff up to
// the fixed budget. An empty result set, or a match outside the region's
// bounding box, is terminal for this query.
func (c *Client) Search(ctx context.Context, query string) (domain.Coordinate, error) {
	q := c.prepareQuery(query)

	backoff := c.initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.Coordinate{}, err
		}

		coord, err := c.searchOnce(ctx, q)
		if err == nil {
			if !c.region.Box.Contains(coord) {
				log.Printf("geocode query=%q reason=out_of_region lat=%f lon=%f", q, coord.Lat, coord.Lon)
				return domain.Coordinate{}, ports.ErrOutOfRegion
			}
			return coord, nil
		}

		// Misses are terminal: the caller moves on to its next
		// candidate query instead of burning the retry budget.
		if errors.Is(err, ports.ErrNotFound) {
			log.Printf("geocode query=%q reason=not_found", q)
			return domain.Coordinate{}, err
		}
		// The HTTP client's own timeout also reports
		// context.DeadlineExceeded; only the caller's context is
		// terminal. A timed-out request is a retryable transient.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Coordinate{}, ctxErr
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		var he *httpStatusError
		if errors.As(err, &he) {
			log.Printf("geocode query=%q status=%d attempt=%d retrying", q, he.Code, attempt)
		} else {
			log.Printf("geocode query=%q attempt=%d err=%v retrying", q, attempt, err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Coordinate{}, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return domain.Coordinate{}, fmt.Errorf("geocode %q: %w", query, lastErr)
}

func (c *Client) searchOnce(ctx context.Context, query string) (domain.Coordinate, error) {
	endpoint := c.baseURL + "/search"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("create request: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.session.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Coordinate{}, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinate{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return domain.Coordinate{}, ports.ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse lat %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse lon %q: %w", results[0].Lon, err)
	}

	return domain.Coordinate{Lat: lat, Lon: lon}, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func replaceFold(s, old, repl string) string {
	lower := strings.ToLower(s)
	idx := strings.Index(lower, strings.ToLower(old))
	if idx < 0 {
		return s
	}
	return s[:idx] + repl + s[idx+len(old):]
}
