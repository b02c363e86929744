package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"dispatch-route-engine/internal/adapters/cache"
	"dispatch-route-engine/internal/adapters/geocode"
	"dispatch-route-engine/internal/adapters/routing"
	"dispatch-route-engine/internal/api"
	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/platform/db"
	"dispatch-route-engine/internal/ports"
	"dispatch-route-engine/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Nominatim, OSRM, the selected cache backend)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := getEnv("PORT", "8080")
	userAgent := getEnv("GEOCODER_USER_AGENT", "dispatch-route-engine/1.0")
	nominatimURL := getEnv("NOMINATIM_URL", geocode.DefaultBaseURL)
	osrmURL := getEnv("OSRM_URL", routing.DefaultBaseURL)

	region := domain.PhoenixEastValley()

	geocodeCache, cleanup, err := openCache(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	geocoder, err := geocode.NewClient(userAgent, region, geocode.WithBaseURL(nominatimURL))
	if err != nil {
		log.Fatal(err)
	}

	resolver := services.NewResolver(geocoder, geocodeCache, region)
	routeProvider := routing.NewClient(osrmURL)

	router := api.NewRouter(resolver, routeProvider)

	// Timeouts are tuned for cold-cache resolution: a batch of unknown
	// addresses spends most of its time paced against the geocoding
	// upstream.
	log.Printf("Server listening addr=:%s region=%q", port, region.Name)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openCache selects the durable cache backend from CACHE_BACKEND:
// "redis" (single-key blob, loaded once at startup), "postgres" (row
// store), or "memory" (process-local, default).
func openCache(ctx context.Context) (ports.GeocodeCache, func(), error) {
	backend := getEnv("CACHE_BACKEND", "memory")

	switch backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		})
		blob := cache.NewRedisBlobCache(client, getEnv("REDIS_CACHE_KEY", cache.DefaultBlobKey))
		if err := blob.Load(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
		return blob, func() { client.Close() }, nil

	case "postgres":
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			return nil, nil, fmt.Errorf("open cache: DATABASE_URL is required for the postgres backend")
		}
		pool, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
		if err := cache.InitSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
		return cache.NewSQLGeocodeCache(pool), func() { pool.Close() }, nil

	case "memory":
		return cache.NewMemoryGeocodeCache(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("open cache: unknown CACHE_BACKEND %q", backend)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
