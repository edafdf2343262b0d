package sync

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultHistorySize = 50

// Hub fans JSON updates out to websocket clients and keeps the most
// recent ones so late joiners can catch up.
type Hub struct {
	mu          sync.Mutex
	wsClients   map[*websocket.Conn]struct{}
	history     []json.RawMessage
	historySize int
}

type Stats struct {
	WSClients int `json:"ws_clients"`
	Buffered  int `json:"buffered"`
}

func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		wsClients:   make(map[*websocket.Conn]struct{}),
		historySize: historySize,
	}
}

// Welcome is the first frame every websocket client receives.
type Welcome struct {
	Type    string    `json:"type"`
	Clients int       `json:"clients"`
	At      time.Time `json:"at"`
}

// AddWS greets ws, replays the buffered history and registers it. It all
// happens under the hub lock so a concurrent broadcast cannot interleave
// writes on the connection.
func (h *Hub) AddWS(ws *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := ws.WriteJSON(Welcome{Type: "welcome", Clients: len(h.wsClients) + 1, At: time.Now().UTC()}); err != nil {
		return err
	}
	for _, msg := range h.history {
		if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return err
		}
	}
	h.wsClients[ws] = struct{}{}
	return nil
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsClients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[ws] marshal broadcast: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, b)
	if len(h.history) > h.historySize {
		h.history = h.history[len(h.history)-h.historySize:]
	}

	for ws := range h.wsClients {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.wsClients, ws)
		}
	}
}

// History returns up to limit of the most recent updates, oldest first.
func (h *Hub) History(limit int) []json.RawMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.history) {
		limit = len(h.history)
	}
	return append([]json.RawMessage{}, h.history[len(h.history)-limit:]...)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		WSClients: len(h.wsClients),
		Buffered:  len(h.history),
	}
}
