package events

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"eventhub/internal/refresh"
	"eventhub/pkg/models"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.listCategories)  // GET /events/categories
	rg.GET("/categories/:id", h.getCategory) // GET /events/categories/:id
	rg.GET("/compare", h.compare)            // GET /events/compare?platform=&sort=
	rg.POST("/refresh", h.refresh)           // POST /events/refresh
	rg.POST("/reload", h.reload)             // POST /events/reload
}

// CategoryView is a category with its events, in display order.
type CategoryView struct {
	models.Category
	Count  int            `json:"count"`
	Events []models.Event `json:"events"`
}

// Views orders a categorized map by the fixed category list. Categories
// outside the list (from a refresh) follow, sorted by name.
func Views(c models.CategorizedEvents) []CategoryView {
	out := make([]CategoryView, 0, len(c))
	for _, cat := range models.Categories {
		evs := c[cat.Name]
		if evs == nil {
			evs = []models.Event{}
		}
		out = append(out, CategoryView{Category: cat, Count: len(evs), Events: evs})
	}
	for _, name := range extraCategories(c) {
		evs := c[name]
		out = append(out, CategoryView{Category: models.Category{ID: name, Name: name}, Count: len(evs), Events: evs})
	}
	return out
}

// listCategories serves the current set. With ?refresh=1 it first tries a
// live refresh; a failed refresh still answers with the cached set.
func (h *Handler) listCategories(c *gin.Context) {
	if c.Query("refresh") == "1" {
		if _, err := h.Svc.Refresh(c.Request.Context()); err != nil {
			c.Header("X-Refresh-Error", err.Error())
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"updated_at": h.Svc.UpdatedAt().Format(time.RFC3339),
		"categories": Views(h.Svc.Categorized()),
	})
}

func (h *Handler) getCategory(c *gin.Context) {
	cat, ok := models.CategoryByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown category"})
		return
	}
	evs := h.Svc.Categorized()[cat.Name]
	if evs == nil {
		evs = []models.Event{}
	}
	c.JSON(http.StatusOK, CategoryView{Category: cat, Count: len(evs), Events: evs})
}

func (h *Handler) compare(c *gin.Context) {
	platform := c.DefaultQuery("platform", PlatformAll)
	key := SortKey(c.DefaultQuery("sort", string(SortEnjoyment)))
	rows := Compare(h.Svc.Events(), platform, key)
	c.JSON(http.StatusOK, gin.H{
		"platform": platform,
		"sort":     key,
		"total":    len(rows),
		"items":    rows,
	})
}

func (h *Handler) refresh(c *gin.Context) {
	added, err := h.Svc.Refresh(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, refresh.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded, please try again later"})
		case errors.Is(err, refresh.ErrPaymentRequired):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment required for AI features"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not fetch live data, showing cached events"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"added":      added,
		"categories": Views(h.Svc.Categorized()),
	})
}

func (h *Handler) reload(c *gin.Context) {
	degraded := h.Svc.Reload(c.Request.Context()) != nil
	c.JSON(http.StatusOK, gin.H{
		"degraded": degraded,
		"total":    len(h.Svc.Events()),
	})
}

func extraCategories(c models.CategorizedEvents) []string {
	var names []string
	for name := range c {
		if !models.IsCategoryName(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
