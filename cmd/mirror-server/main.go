package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"eventhub/internal/scraper"
)

// serves the file written by export-mirror at GET /events, the shape
// scraper.FeedSource reads
func main() {
	var (
		dataPath = flag.String("data", "data/feed.json", "feed JSON file")
		addr     = flag.String("addr", ":9000", "listen address")
	)
	flag.Parse()

	router := gin.Default()
	router.GET("/events", func(c *gin.Context) {
		b, err := os.ReadFile(*dataPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read feed: " + err.Error()})
			return
		}
		// validate so a bad file does not silently break the scraper
		var items []scraper.FeedItem
		if err := json.Unmarshal(b, &items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "feed is not valid JSON: " + err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", b)
	})

	log.Printf("mirror-server listening on %s", *addr)
	if err := router.Run(*addr); err != nil {
		log.Fatalf("mirror-server stopped: %v", err)
	}
}
