package ratings

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eventhub/internal/auth"
	"eventhub/internal/events"
	"eventhub/pkg/models"
)

type Reloader interface {
	Reload(ctx context.Context) error
}

type Handler struct {
	Repo      *Repo
	Discovery Reloader
	Hub       events.Broadcaster
}

func NewHandler(repo *Repo, discovery Reloader, hub events.Broadcaster) *Handler {
	return &Handler{Repo: repo, Discovery: discovery, Hub: hub}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/events/:id/ratings", h.listByEvent)
	rg.GET("/events/:id/ratings/summary", h.summary)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/events/:id/ratings", h.rate)
	rg.DELETE("/ratings/:id", h.delete)
}

type rateReq struct {
	Score int `json:"score"`
}

// RatingChange is broadcast whenever an event's ratings move.
type RatingChange struct {
	Type    string               `json:"type"`
	Summary models.RatingSummary `json:"summary"`
	At      time.Time            `json:"at"`
}

func (h *Handler) rate(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Score < 1 || req.Score > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 1 and 5"})
		return
	}

	eventID := strings.TrimSpace(c.Param("id"))
	rating, err := h.Repo.Rate(c.Request.Context(), eventID, claims.UserID, req.Score)
	switch {
	case errors.Is(err, ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	case err != nil:
		log.Printf("[ratings] rate %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rate failed"})
		return
	}

	h.changed(c.Request.Context(), eventID)
	c.JSON(http.StatusCreated, rating)
}

func (h *Handler) summary(c *gin.Context) {
	sum, err := h.Repo.Summary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *Handler) listByEvent(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	items, err := h.Repo.ListByEvent(c.Request.Context(), strings.TrimSpace(c.Param("id")), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Discovery != nil {
		if err := h.Discovery.Reload(c.Request.Context()); err != nil {
			log.Printf("[ratings] reload after delete: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) changed(ctx context.Context, eventID string) {
	if h.Discovery != nil {
		if err := h.Discovery.Reload(ctx); err != nil {
			log.Printf("[ratings] reload after rating: %v", err)
		}
	}
	if h.Hub == nil {
		return
	}
	sum, err := h.Repo.Summary(ctx, eventID)
	if err != nil {
		log.Printf("[ratings] summary for broadcast: %v", err)
		return
	}
	h.Hub.BroadcastJSON(RatingChange{Type: "rating.created", Summary: sum, At: time.Now().UTC()})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
