package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"dispatch-route-engine/internal/adapters/cache"
	"dispatch-route-engine/internal/domain"
	"dispatch-route-engine/internal/platform/db"
)

// cachetool administers the durable geocode cache: it initializes the
// Postgres schema and moves the Redis blob in and out of JSON files for
// backup and seeding.
func main() {
	initSchema := flag.Bool("init-schema", false, "create the Postgres geocode_cache table")
	exportPath := flag.String("export", "", "write the Redis blob cache to a JSON file")
	importPath := flag.String("import", "", "replace the Redis blob cache with a JSON file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx := context.Background()

	ran := false

	if *initSchema {
		ran = true
		runInitSchema(ctx)
	}

	if *exportPath != "" {
		ran = true
		runExport(ctx, *exportPath)
	}

	if *importPath != "" {
		ran = true
		runImport(ctx, *importPath)
	}

	if !ran {
		flag.Usage()
		os.Exit(2)
	}
}

func runInitSchema(ctx context.Context) {
	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	log.Println("Initializing geocode cache schema...")
	if err := cache.InitSchema(ctx, pool); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}

func openBlob(ctx context.Context) (*cache.RedisBlobCache, func()) {
	client := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
	})

	blob := cache.NewRedisBlobCache(client, getEnv("REDIS_CACHE_KEY", cache.DefaultBlobKey))
	if err := blob.Load(ctx); err != nil {
		client.Close()
		log.Fatalf("load blob cache failed: %v", err)
	}

	return blob, func() { client.Close() }
}

func runExport(ctx context.Context, path string) {
	blob, cleanup := openBlob(ctx)
	defer cleanup()

	entries := blob.Snapshot()
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Fatalf("marshal cache failed: %v", err)
	}

	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		log.Fatalf("write %q failed: %v", path, err)
	}
	log.Printf("Exported %d entries to %s", len(entries), path)
}

func runImport(ctx context.Context, path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %q failed: %v", path, err)
	}

	entries := make(map[string]domain.GeocodeResult)
	if err := json.Unmarshal(payload, &entries); err != nil {
		log.Fatalf("parse %q failed: %v", path, err)
	}

	blob, cleanup := openBlob(ctx)
	defer cleanup()

	blob.Replace(entries)
	if err := blob.Flush(ctx); err != nil {
		log.Fatalf("flush blob cache failed: %v", err)
	}
	log.Printf("Imported %d entries from %s", len(entries), path)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
