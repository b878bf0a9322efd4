// Package telemetry exposes the running simulation over HTTP: a JSON status
// snapshot, a Prometheus metrics endpoint, and a websocket stream that pushes
// every tick's telescope status to connected visualization clients.
package telemetry

import (
	"encoding/json"
	"sync"

	"github.com/JordanK1ng/TelescopeVisualization/model"
)

// Broadcaster fans a per-tick status payload out to any number of stream
// subscribers. Slow subscribers drop frames rather than stalling the loop.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[chan []byte]struct{})}
}

// Subscribe returns a channel of marshalled status frames and a cleanup
// function the caller must invoke on disconnect.
func (b *Broadcaster) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
		close(ch)
	}
	return ch, unsub
}

// Publish marshals the status once and offers it to every subscriber.
func (b *Broadcaster) Publish(st model.TelescopeStatus) {
	data, err := json.Marshal(st)
	if err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- data:
		default:
			// subscriber is behind; skip this frame
		}
	}
}

// Subscribers reports the current subscriber count.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
