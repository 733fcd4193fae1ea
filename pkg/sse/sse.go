// Package sse streams server-sent events to browsers that cannot or will
// not open a websocket.
//
//	broker := sse.NewBroker()
//	router.Get("/sse/comments", "sse.comments", broker.ServeHTTP)
//	broker.Publish("comment.created", view)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/agromap/agromap/pkg/logger"
)

const (
	heartbeat  = 25 * time.Second
	sendBuffer = 16
)

// event is one encoded frame.
type event struct {
	name string
	data []byte
}

// Broker fans published events out to every connected stream. A stream that
// falls behind by more than its buffer loses events instead of blocking
// publishers.
type Broker struct {
	mu      sync.RWMutex
	clients map[chan event]struct{}
}

func NewBroker() *Broker {
	return &Broker{clients: make(map[chan event]struct{})}
}

// Publish JSON-encodes data and queues it for every subscriber.
func (b *Broker) Publish(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal %s: %w", name, err)
	}
	ev := event{name: name, data: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
			logger.Warn("sse: dropping event for slow client", "event", name)
		}
	}
	return nil
}

// ClientCount returns the number of open streams.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broker) subscribe() chan event {
	ch := make(chan event, sendBuffer)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan event) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
}

// ServeHTTP holds the connection open and writes events until the client
// goes away. A comment line is sent periodically so proxies keep the
// connection alive.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		logger.Error("sse: streaming unsupported", "error", err)
		return
	}

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.data)
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
