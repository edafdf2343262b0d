// Package functions serves the backend calls the refresh client makes:
// scrape a listings page, then extract and categorize its events.
package functions

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/internal/ai"
	"eventhub/internal/scraper"
	"eventhub/pkg/models"
)

// PageFetcher returns the visible text of a listings page.
type PageFetcher func(ctx context.Context, url string, platform models.Platform) (string, error)

// FetchPage is the live PageFetcher.
func FetchPage(ctx context.Context, url string, platform models.Platform) (string, error) {
	return scraper.NewPageSource(url, platform, nil).FetchText(ctx)
}

type Handler struct {
	Fetch    PageFetcher
	Pipeline *ai.Pipeline
}

func NewHandler(fetch PageFetcher, pipeline *ai.Pipeline) *Handler {
	if fetch == nil {
		fetch = FetchPage
	}
	return &Handler{Fetch: fetch, Pipeline: pipeline}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scrape-events", h.scrapeEvents)         // POST /functions/scrape-events
	rg.POST("/categorize-events", h.categorizeEvents) // POST /functions/categorize-events
}

type scrapeReq struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

func (h *Handler) scrapeEvents(c *gin.Context) {
	var req scrapeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
		return
	}

	url := scraper.PageURL(req.URL, req.Platform)
	platform := models.ParsePlatform(req.Platform)
	text, err := h.Fetch(c.Request.Context(), url, platform)
	if err != nil {
		log.Printf("[functions] scrape %s: %v", url, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to scrape " + url})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"markdown": text,
			"url":      url,
		},
	})
}

type categorizeReq struct {
	Events         []models.Event `json:"events"`
	ScrapedContent string         `json:"scrapedContent"`
}

func (h *Handler) categorizeEvents(c *gin.Context) {
	var req categorizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
		return
	}

	res, err := h.Pipeline.Run(c.Request.Context(), req.Events, req.ScrapedContent)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Rate limit exceeded, please try again later"})
		case errors.Is(err, ai.ErrPaymentRequired):
			c.JSON(http.StatusPaymentRequired, gin.H{"success": false, "error": "Payment required for AI features"})
		default:
			log.Printf("[functions] categorize: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	body := gin.H{"success": true, "categorizedEvents": res.Categorized}
	if res.AllEvents != nil {
		body["topPopular"] = res.TopPopular
		body["allEvents"] = res.AllEvents
	}
	c.JSON(http.StatusOK, body)
}
