package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handsculpt/internal/app"
	"github.com/ayusman/handsculpt/internal/detector"
	"github.com/ayusman/handsculpt/internal/sculpt"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameSink consumes hand landmark frames.
type FrameSink interface {
	HandleFrame(f detector.Frame) sculpt.Effects
}

// FramesHandler accepts landmark frames from a browser-side detector over
// WebSocket and answers each one with the resulting effects.
type FramesHandler struct {
	sink FrameSink
}

// NewFramesHandler creates a new FramesHandler feeding sink.
func NewFramesHandler(sink FrameSink) *FramesHandler {
	return &FramesHandler{sink: sink}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var f detector.Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(map[string]string{"error": "invalid frame"}); err != nil {
				return
			}
			continue
		}
		f.Hands = detector.ValidHands(f.Hands)

		eff := h.sink.HandleFrame(f)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(eff); err != nil {
			return
		}
	}
}

// Subscriber publishes session events.
type Subscriber interface {
	Subscribe() (<-chan app.Event, func())
}

// LandmarksHandler streams session events, hands included, to WebSocket
// clients.
type LandmarksHandler struct {
	events Subscriber
}

// NewLandmarksHandler creates a new LandmarksHandler.
func NewLandmarksHandler(events Subscriber) *LandmarksHandler {
	return &LandmarksHandler{events: events}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}
