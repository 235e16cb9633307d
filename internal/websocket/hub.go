package websocket

import (
	"context"
	"sync"

	"github.com/xelth-com/ecktables/internal/events"
	"github.com/xelth-com/ecktables/internal/floorplan"
	"github.com/xelth-com/ecktables/internal/metrics"
	"go.uber.org/zap"
)

// Options are the collaborators every connection's editor needs.
type Options struct {
	Editor    EditorConfig
	Source    HallSource
	Committer *floorplan.Committer
	Bus       events.Bus
	Logger    *zap.Logger
}

// Hub maintains the set of active clients grouped by dining hall
type Hub struct {
	opts Options
	log  *zap.Logger

	// Registered clients and hall rooms: hallID -> clients
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	// Unregister requests
	unregister chan *Client

	// Closed when Run returns
	stopped chan struct{}

	// Set once Run has disconnected everyone; guarded by mu
	closed bool

	// Mutex for thread-safe access to clients and rooms
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub(opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Hub{
		opts:       opts,
		log:        opts.Logger,
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.close()
			}
			h.clients = make(map[*Client]bool)
			h.rooms = make(map[string]map[*Client]bool)
			h.closed = true
			h.mu.Unlock()
			return
		}
	}
}

// add registers a client before its pumps start, so a JOIN_HALL can
// never overtake the registration. False once the hub has shut down.
func (h *Hub) add(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[client] = true
	metrics.WebsocketOpened()
	h.log.Info("floor plan client connected", zap.String("client_id", client.ID))
	return true
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	if room := h.rooms[client.hallID]; room != nil {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.hallID)
		}
	}
	client.close()
	metrics.WebsocketClosed()
	h.log.Info("floor plan client disconnected", zap.String("client_id", client.ID))
}

// Join moves a client into a hall room, leaving its previous one.
// Clients the hub has already dropped are ignored.
func (h *Hub) Join(client *Client, hallID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return false
	}

	if room := h.rooms[client.hallID]; room != nil {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.hallID)
		}
	}
	client.hallID = hallID
	if h.rooms[hallID] == nil {
		h.rooms[hallID] = make(map[*Client]bool)
	}
	h.rooms[hallID][client] = true
	return true
}

// HallSize returns the number of clients joined to a hall
func (h *Hub) HallSize(hallID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[hallID])
}

// HandleTableMoved forwards a committed move to every client of the hall.
// It is meant to be subscribed to the event bus.
func (h *Hub) HandleTableMoved(ev events.TableMoved) {
	h.mu.RLock()
	room := make([]*Client, 0, len(h.rooms[ev.HallID]))
	for client := range h.rooms[ev.HallID] {
		room = append(room, client)
	}
	h.mu.RUnlock()

	for _, client := range room {
		if !client.deliverMove(ev) {
			h.log.Warn("dropping table move for slow client",
				zap.String("client_id", client.ID),
				zap.String("table_id", ev.TableID))
		}
	}
}
