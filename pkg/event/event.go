// Package event provides a small in-process event dispatcher.
package event

import (
	"sync"
)

// Names of the events the catalog publishes.
const (
	ProductChanged  = "product.changed"
	CategoryChanged = "category.changed"
	OrderChanged    = "order.changed"
)

// Change is the payload of every *.changed event.
type Change struct {
	Entity string // "product" | "category" | "order"
	Action string // "created" | "updated" | "deleted"
	ID     string
}

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

// Bus holds listeners per event name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
// A nil Bus drops the event.
func (b *Bus) Fire(event string, payload interface{}) {
	for _, h := range b.listeners(event) {
		h(payload)
	}
}

func (b *Bus) listeners(event string) []Handler {
	if b == nil {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	return hs
}
