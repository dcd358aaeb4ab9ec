package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ppemonitor/internal/logger"
)

// HubService fans live detection counts out to connected websocket clients.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
	logger     *logger.Logger
}

// countsMessage is the payload pushed to /api/live subscribers.
type countsMessage struct {
	Counts    map[string]int `json:"counts"`
	Timestamp string         `json:"timestamp"`
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		logger:     logger,
	}
}

// Run processes register/unregister/broadcast events until the process exits.
func (h *HubService) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Info("Live client connected. Total: %d", h.GetClientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mutex.Unlock()
			h.logger.Info("Live client disconnected. Total: %d", h.GetClientCount())

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending live update: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a websocket client.
func (h *HubService) Register(client *websocket.Conn) {
	h.register <- client
}

// Unregister removes a websocket client.
func (h *HubService) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// BroadcastCounts pushes the current per-class counts to all clients. Drops
// the update when the hub is backed up rather than stalling the frame loop.
func (h *HubService) BroadcastCounts(counts map[string]int) {
	message, err := json.Marshal(countsMessage{
		Counts:    counts,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Error("Error encoding live update: %v", err)
		return
	}

	select {
	case h.broadcast <- message:
	default:
	}
}

// GetClientCount returns the number of connected clients.
func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
