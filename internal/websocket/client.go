package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xelth-com/ecktables/internal/events"
	"github.com/xelth-com/ecktables/internal/middleware"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024

	// Time allowed for a data read triggered by a message.
	loadTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins; the floor plan UI may be served from another host
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a middleman between the websocket connection and the hub.
// Its loop goroutine is the only owner of the editor state.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Decoded traffic and work scheduled onto the loop.
	inbound chan InboundMessage
	moved   chan events.TableMoved
	tasks   chan func()

	done      chan struct{}
	closeOnce sync.Once

	editor *Editor
	log    *zap.Logger

	ID string

	// hallID is guarded by hub.mu
	hallID string
}

func newClient(hub *Hub, conn *websocket.Conn, tenantID string) *Client {
	c := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		inbound: make(chan InboundMessage, 64),
		moved:   make(chan events.TableMoved, 64),
		tasks:   make(chan func(), 16),
		done:    make(chan struct{}),
		ID:      "web_" + uuid.New().String(),
	}
	c.log = hub.log.With(zap.String("client_id", c.ID), zap.String("tenant_id", tenantID))
	c.editor = NewEditor(hub.opts.Editor, tenantID, hub.opts.Source, hub.opts.Committer, hub.opts.Bus, c.log, c.SendJSON, c.post)
	return c
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump pumps messages from the websocket connection to the loop.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg InboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendJSON(NotificationMessage{Type: TypeNotification, Level: "error", Message: "malformed message"})
			continue
		}

		select {
		case c.inbound <- msg:
		case <-c.done:
			return
		}
	}
}

// loop applies inbound events, committed moves and scheduled work in order.
func (c *Client) loop() {
	for {
		select {
		case msg := <-c.inbound:
			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			c.editor.Handle(ctx, msg)
			cancel()
			if msg.Type == TypeJoinHall && c.editor.HallID() == msg.HallID {
				c.hub.Join(c, msg.HallID)
			}
		case ev := <-c.moved:
			c.editor.OnTableMoved(ev)
		case fn := <-c.tasks:
			fn()
		case <-c.done:
			return
		}
	}
}

// writePump pumps messages from the loop to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// SendJSON queues a JSON message for the client. Messages are dropped
// when the client is gone or its buffer is full.
func (c *Client) SendJSON(v interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		c.log.Error("marshal outbound message", zap.Error(err))
		return
	}
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.log.Warn("outbound buffer full, dropping message")
	}
}

// post schedules fn on the loop goroutine.
func (c *Client) post(fn func()) {
	select {
	case c.tasks <- fn:
	case <-c.done:
	}
}

func (c *Client) deliverMove(ev events.TableMoved) bool {
	select {
	case c.moved <- ev:
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

// ServeWs handles websocket requests from the peer.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := newClient(hub, conn, middleware.TenantID(r.Context()))
	if !hub.add(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.loop()
	go client.readPump()
}
