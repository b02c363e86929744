package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/platform/obs"
)

// SQLGeocodeCache is a Postgres-backed address -> GeocodeResult store.
// Each entry is its own row and is durable as soon as Set returns, so
// Flush is a no-op. Negative results are rows with NULL coordinates and a
// non-empty error message.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// InitSchema creates the geocode cache table.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: db is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat DOUBLE PRECISION,
        lon DOUBLE PRECISION,
        error TEXT NOT NULL DEFAULT ''
    );
	`

	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("init schema: create geocode_cache table: %w", err)
	}

	return nil
}

// Get fetches the cached result for one address.
func (s *SQLGeocodeCache) Get(ctx context.Context, address string) (_ domain.GeocodeResult, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.GeocodeResult{}, false, errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(address) == "" {
		return domain.GeocodeResult{}, false, nil
	}

	q := `
	SELECT lat, lon, error
    FROM geocode_cache
    WHERE address = $1;
	`

	var lat, lon sql.NullFloat64
	var errMsg string
	if err := s.DB.QueryRowContext(ctx, q, address).Scan(&lat, &lon, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.GeocodeResult{}, false, nil
		}
		return domain.GeocodeResult{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	res := domain.GeocodeResult{Err: errMsg}
	if lat.Valid && lon.Valid {
		res.Coordinate = &domain.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
		res.Err = ""
	}

	return res, true, nil
}

// Set stores one result, overwriting any previous entry for the address.
func (s *SQLGeocodeCache) Set(ctx context.Context, address string, result domain.GeocodeResult) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(address) == "" {
		return errors.New("insert geocode cache: empty address key")
	}

	q := `
	INSERT INTO geocode_cache (address, lat, lon, error)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		error = EXCLUDED.error;
	`

	var lat, lon sql.NullFloat64
	if result.Coordinate != nil {
		lat = sql.NullFloat64{Float64: result.Coordinate.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: result.Coordinate.Lon, Valid: true}
	}

	if _, err := s.DB.ExecContext(ctx, q, address, lat, lon, result.Err); err != nil {
		return fmt.Errorf("insert geocode cache addr=%q: %w", address, err)
	}

	return nil
}

// Flush is a no-op: rows are durable on Set.
func (s *SQLGeocodeCache) Flush(ctx context.Context) error { return nil }

// Export reads the full cache as an address -> result map.
func (s *SQLGeocodeCache) Export(ctx context.Context) (map[string]domain.GeocodeResult, error) {
	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	q := `
	SELECT address, lat, lon, error
    FROM geocode_cache;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("export geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.GeocodeResult)
	for rows.Next() {
		var addr, errMsg string
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&addr, &lat, &lon, &errMsg); err != nil {
			return nil, fmt.Errorf("export geocode cache: scan rows: %w", err)
		}

		res := domain.GeocodeResult{Err: errMsg}
		if lat.Valid && lon.Valid {
			res.Coordinate = &domain.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
			res.Err = ""
		}
		out[addr] = res
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("export geocode cache: row iteration: %w", err)
	}

	return out, nil
}
