package sync

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades to a websocket, replays recent updates and then
// streams new ones. Incoming frames are read only to notice disconnects.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		if err := hub.AddWS(ws); err != nil {
			_ = ws.Close()
			return
		}
		log.Printf("[ws] client connected: %s", c.ClientIP())

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.RemoveWS(ws)
		log.Printf("[ws] client disconnected: %s", c.ClientIP())
	}
}

// HistoryHandler serves the buffered updates, GET /updates?limit=.
func HistoryHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		items := hub.History(limit)
		c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
	}
}
