package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"eventhub/internal/export"
	"eventhub/internal/seed"
	"eventhub/internal/venues"
	"eventhub/pkg/database"
	"eventhub/pkg/utils"
)

func main() {
	utils.LoadDotEnv()

	var (
		outPath      = flag.String("out", "data/events.csv", "output CSV path for events")
		withBaseline = flag.Bool("baseline", false, "include the bundled baseline venues")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	snap, err := venues.NewLoader(venues.NewRepo(db), log.Default()).Load(ctx)
	if err != nil {
		log.Fatalf("load events failed: %v", err)
	}
	evs := snap.Events
	if !*withBaseline {
		// baseline events always come first in a snapshot
		evs = evs[len(seed.Events()):]
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create failed: %v", err)
	}
	defer f.Close()

	if err := export.WriteEventsCSV(f, evs); err != nil {
		log.Fatalf("export events failed: %v", err)
	}
	log.Printf("exported %d events to %s", len(evs), *outPath)
}
