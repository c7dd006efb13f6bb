package app

import (
	"sync"

	"github.com/ayusman/handsculpt/internal/detector"
	"github.com/ayusman/handsculpt/internal/sculpt"
)

// subscriberBuffer is how many events a slow subscriber may fall behind
// before events are dropped for it.
const subscriberBuffer = 16

// Event is published after every frame or action.
type Event struct {
	Effects   *sculpt.Effects          `json:"effects,omitempty"`
	Hands     []detector.HandLandmarks `json:"hands,omitempty"`
	Timestamp int64                    `json:"timestamp"`
}

// hub fans events out to subscribers without blocking the publisher.
type hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan Event]struct{})}
}

func (h *hub) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
}

func (h *hub) publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
