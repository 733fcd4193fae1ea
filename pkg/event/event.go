// Package event provides a small in-process event dispatcher.
package event

import (
	"fmt"
	"sync"

	"github.com/agromap/agromap/pkg/logger"
)

// Handler receives an event payload.
type Handler func(payload interface{})

// Bus routes named events to their listeners. A nil *Bus drops every event,
// so components can be built without one in tests.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

func (b *Bus) listeners(event string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[event]...)
}

// Fire dispatches an event synchronously to all listeners. A panicking
// listener is logged and does not stop the others.
func (b *Bus) Fire(event string, payload interface{}) {
	if b == nil {
		return
	}
	for _, h := range b.listeners(event) {
		safeCall(event, h, payload)
	}
}

// FireAsync dispatches the event to every listener on its own goroutine.
func (b *Bus) FireAsync(event string, payload interface{}) {
	if b == nil {
		return
	}
	for _, h := range b.listeners(event) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			safeCall(event, h, payload)
		}(h)
	}
}

// Wait blocks until every FireAsync listener has returned.
func (b *Bus) Wait() {
	if b == nil {
		return
	}
	b.wg.Wait()
}

func safeCall(event string, h Handler, payload interface{}) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("event: listener panicked", "event", event, "error", fmt.Sprintf("%v", err))
		}
	}()
	h(payload)
}
