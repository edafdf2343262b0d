package venues

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventhub/internal/auth"
	"eventhub/internal/events"
	"eventhub/internal/seed"
	"eventhub/pkg/models"
)

// Reloader rebuilds the discovery state after a store write.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Handler struct {
	Repo      *Repo
	Loader    *Loader
	Discovery Reloader
	Hub       events.Broadcaster
}

func NewHandler(repo *Repo, loader *Loader, discovery Reloader, hub events.Broadcaster) *Handler {
	return &Handler{Repo: repo, Loader: loader, Discovery: discovery, Hub: hub}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/venues", h.list)                   // GET /venues
	rg.GET("/venues/:id/events", h.venueEvents) // GET /venues/:id/events?sort=date|price
	rg.GET("/map", h.mapView)                   // GET /map
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/venues", h.createVenue)
	rg.POST("/venues/:id/events", h.createEvent)
}

func (h *Handler) list(c *gin.Context) {
	snap, err := h.Loader.Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"degraded": err != nil,
		"total":    len(snap.Venues),
		"items":    snap.Venues,
	})
}

func (h *Handler) venueEvents(c *gin.Context) {
	snap, _ := h.Loader.Load(c.Request.Context())
	v, ok := snap.FindVenue(models.ID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
		return
	}

	sortBy := events.SortKey(c.DefaultQuery("sort", string(events.SortDate)))
	evs := events.SortVenueEvents(v.Events, sortBy)
	c.JSON(http.StatusOK, gin.H{
		"venue": gin.H{
			"id":          v.ID,
			"name":        v.Name,
			"location":    v.Location,
			"description": v.Description,
		},
		"sort":  sortBy,
		"stats": events.VenueStats(v.Events),
		"items": evs,
	})
}

// MapVenue is a venue placed on the map with its overlay stats.
type MapVenue struct {
	ID       models.ID      `json:"id"`
	Name     string         `json:"name"`
	Location string         `json:"location"`
	Lat      float64        `json:"lat"`
	Lng      float64        `json:"lng"`
	Stats    events.Stats   `json:"stats"`
	Events   []models.Event `json:"events"`
}

// MapVenues keeps venues that have coordinates, from the store or the
// static table by name.
func MapVenues(vs []models.Venue) []MapVenue {
	out := make([]MapVenue, 0, len(vs))
	for _, v := range vs {
		var lat, lng float64
		switch {
		case v.Lat != nil && v.Lng != nil:
			lat, lng = *v.Lat, *v.Lng
		default:
			coords, ok := seed.VenueCoordinates[v.Name]
			if !ok {
				continue
			}
			lat, lng = coords.Lat, coords.Lng
		}
		out = append(out, MapVenue{
			ID:       v.ID,
			Name:     v.Name,
			Location: v.Location,
			Lat:      lat,
			Lng:      lng,
			Stats:    events.VenueStats(v.Events),
			Events:   v.Events,
		})
	}
	return out
}

func (h *Handler) mapView(c *gin.Context) {
	snap, _ := h.Loader.Load(c.Request.Context())
	items := MapVenues(snap.Venues)
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

type createVenueReq struct {
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

func (h *Handler) createVenue(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createVenueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	v := models.Venue{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Lat:         req.Lat,
		Lng:         req.Lng,
		UserID:      claims.UserID,
	}
	if err := h.Repo.CreateVenue(c.Request.Context(), &v); err != nil {
		writeStoreError(c, err, "create venue failed")
		return
	}

	h.changed(c.Request.Context(), "venue.created", v.ID)
	c.JSON(http.StatusCreated, v)
}

type createEventReq struct {
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Platform    string  `json:"platform"`
	Crowd       int     `json:"crowd"`
	Capacity    int     `json:"capacity"`
}

func (h *Handler) createEvent(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	venue, err := h.Repo.GetVenue(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get venue failed"})
		return
	}
	if venue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
		return
	}

	var req createEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	e := models.Event{
		VenueID:     venue.ID,
		UserID:      claims.UserID,
		Name:        req.Name,
		Date:        req.Date,
		Time:        req.Time,
		Price:       req.Price,
		Description: req.Description,
		Platform:    models.Platform(req.Platform),
		Crowd:       req.Crowd,
		Capacity:    req.Capacity,
	}
	if err := h.Repo.CreateEvent(c.Request.Context(), &e); err != nil {
		writeStoreError(c, err, "create event failed")
		return
	}
	e.Venue = venue.Name

	h.changed(c.Request.Context(), "event.created", e.ID)
	c.JSON(http.StatusCreated, e)
}

func writeStoreError(c *gin.Context, err error, msg string) {
	if errors.Is(err, models.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[store] %s: %v", msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// StoreChange is broadcast after a venue or event write.
type StoreChange struct {
	Type string    `json:"type"`
	ID   models.ID `json:"id"`
	At   time.Time `json:"at"`
}

func (h *Handler) changed(ctx context.Context, kind string, id models.ID) {
	if h.Discovery != nil {
		if err := h.Discovery.Reload(ctx); err != nil {
			log.Printf("[store] reload after %s: %v", kind, err)
		}
	}
	if h.Hub != nil {
		h.Hub.BroadcastJSON(StoreChange{Type: kind, ID: id, At: time.Now().UTC()})
	}
}
