package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"ppemonitor/internal/logger"
	"ppemonitor/internal/services"
	"ppemonitor/internal/services/websocket"
)

var upgrader = gorilla.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// VideoStreamHandler serves the annotated camera feed as a
// multipart/x-mixed-replace JPEG stream. Each client connection runs its
// own pipeline loop; the loop ends when the capture source fails or the
// client disconnects.
func VideoStreamHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, _ := w.(http.Flusher)

		for {
			select {
			case <-r.Context().Done():
				return
			default:
			}

			jpeg, err := manager.NextFrame()
			if err != nil {
				if err != services.ErrNoFrame {
					logger.Error("Stream frame failed: %v", err)
				}
				return
			}

			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
				return
			}
			if _, err := w.Write(jpeg); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}

			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// DataHandler returns the current per-class detection counts as JSON.
func DataHandler(live *services.LiveState, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(live.Snapshot()); err != nil {
			logger.Error("Error encoding live counts: %v", err)
		}
	}
}

// LiveWebsocketHandler upgrades the connection and subscribes it to live
// count updates until the client goes away.
func LiveWebsocketHandler(hub *websocket.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("Websocket upgrade failed: %v", err)
			return
		}

		hub.Register(conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Unregister(conn)
				return
			}
		}
	}
}
