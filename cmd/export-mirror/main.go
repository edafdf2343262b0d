package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"eventhub/internal/export"
	"eventhub/internal/venues"
	"eventhub/pkg/database"
	"eventhub/pkg/utils"
)

func main() {
	utils.LoadDotEnv()

	var (
		outPath = flag.String("out", "data/feed.json", "output JSON path")
		limit   = flag.Int("limit", 200, "how many events to export")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	// baseline plus store, so a fresh database still yields a usable feed
	snap, err := venues.NewLoader(venues.NewRepo(db), log.Default()).Load(ctx)
	if err != nil {
		log.Printf("store unavailable, exporting baseline only: %v", err)
	}
	evs := snap.Events
	if *limit > 0 && len(evs) > *limit {
		evs = evs[:*limit]
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}

	b, err := json.MarshalIndent(export.FeedItems(evs), "", "  ")
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}
	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		log.Fatalf("write failed: %v", err)
	}

	log.Printf("exported %d events to %s", len(evs), *outPath)
}
