// Package events propagates committed table moves to every connected
// floor plan, locally or across instances through Redis.
package events

import (
	"context"
	"sync"
)

// TableMoved is published after a position has been persisted.
type TableMoved struct {
	HallID   string  `json:"hallId"`
	TableID  string  `json:"tableId"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Rotation float64 `json:"rotation"`
}

// Handler receives published moves.
type Handler func(TableMoved)

// Bus fans TableMoved events out to subscribers.
type Bus interface {
	Publish(ctx context.Context, ev TableMoved) error
	Subscribe(h Handler)
	Close() error
}

// handlers is the subscriber list shared by bus implementations.
type handlers struct {
	mu   sync.RWMutex
	list []Handler
}

func (h *handlers) add(fn Handler) {
	h.mu.Lock()
	h.list = append(h.list, fn)
	h.mu.Unlock()
}

func (h *handlers) dispatch(ev TableMoved) {
	h.mu.RLock()
	list := h.list
	h.mu.RUnlock()
	for _, fn := range list {
		fn(ev)
	}
}

// LocalBus delivers events in-process, synchronously on Publish.
type LocalBus struct {
	handlers
}

// NewLocalBus creates an in-process bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

func (b *LocalBus) Publish(_ context.Context, ev TableMoved) error {
	b.dispatch(ev)
	return nil
}

func (b *LocalBus) Subscribe(h Handler) { b.add(h) }

func (b *LocalBus) Close() error { return nil }
