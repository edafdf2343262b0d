package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"eventhub/internal/export"
	"eventhub/internal/scraper"
	"eventhub/pkg/database"
	"eventhub/pkg/utils"
)

func main() {
	utils.LoadDotEnv()

	inPath := flag.String("in", "data/events.csv", "input CSV path for events")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	f, err := os.Open(*inPath)
	if err != nil {
		log.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	evs, err := export.ReadEventsCSV(f)
	if err != nil {
		log.Fatalf("read csv failed: %v", err)
	}

	n, err := scraper.SaveToDatabase(ctx, db, evs)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}
	log.Printf("imported %d of %d events from %s", n, len(evs), *inPath)
}
