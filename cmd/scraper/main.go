package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"eventhub/internal/ai"
	"eventhub/internal/scraper"
	"eventhub/pkg/database"
	"eventhub/pkg/models"
	"eventhub/pkg/utils"
)

func main() {
	utils.LoadDotEnv()
	refreshCfg := utils.LoadRefreshConfig()

	platforms := flag.String("platforms", "dice,eventbrite,partiful,posh", "comma-separated listing pages to scrape")
	feedURL := flag.String("feed", refreshCfg.FeedURL, "base URL of a JSON event feed (empty to skip)")
	timeout := flag.Duration("timeout", 3*time.Minute, "overall deadline")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	var sources []scraper.Source

	// listing pages need the AI gateway to turn text into events
	if refreshCfg.AIKey == "" {
		log.Println("[scraper] EVENTHUB_AI_KEY not set, skipping listing pages")
	} else {
		pipeline := ai.NewPipeline(ai.NewGateway(refreshCfg), nil)
		for _, p := range strings.Split(*platforms, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			platform := models.ParsePlatform(p)
			sources = append(sources, scraper.NewPageSource(scraper.PageURL("", p), platform, pipeline))
		}
	}

	if u := strings.TrimSpace(*feedURL); u != "" {
		sources = append(sources, scraper.NewFeedSource(u))
	}
	if len(sources) == 0 {
		log.Fatal("no sources configured")
	}

	evs, err := scraper.NewAggregator(sources...).FetchAndMerge(ctx)
	if err != nil {
		log.Fatalf("scrape failed: %v", err)
	}
	log.Printf("merged events: %d", len(evs))

	n, err := scraper.SaveToDatabase(ctx, db, evs)
	if err != nil {
		log.Fatalf("save failed: %v", err)
	}
	log.Printf("saved %d events to %s", n, cfg)
}
