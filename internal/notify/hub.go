// Package notify delivers "a monitored table changed" signals. Consumers
// react by re-fetching; the payload carries no row data.
package notify

import "sync"

type subscriber struct {
	id int
	fn func(table string)
}

// Hub fans table-change signals out to subscribers. Notification is
// synchronous and in registration order.
type Hub struct {
	mu     sync.Mutex
	subs   map[string][]subscriber
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: map[string][]subscriber{}}
}

// Subscribe registers fn for changes to table. The returned function
// unsubscribes; it is safe to call more than once.
func (h *Hub) Subscribe(table string, fn func(table string)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[table] = append(h.subs[table], subscriber{id: id, fn: fn})
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		list := h.subs[table]
		for i, sub := range list {
			if sub.id == id {
				h.subs[table] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish notifies every subscriber of table, in registration order.
func (h *Hub) Publish(table string) {
	h.mu.Lock()
	list := h.subs[table]
	subs := make([]subscriber, len(list))
	copy(subs, list)
	h.mu.Unlock()
	for _, sub := range subs {
		sub.fn(table)
	}
}
