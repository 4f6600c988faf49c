package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wellsgz/linkcheck/internal/runner"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay below pongWait
	maxMessageSize = 512
	sendBuffer     = 128
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ClientMessage is a request from a WebSocket client: "start" or "state"
type ClientMessage struct {
	Type string `json:"type"`
}

// ServerMessage is pushed to WebSocket clients. Type is a runner event type,
// or "state", "started" or "error" for replies.
type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans runner events out to connected clients and serves their requests
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	unregister chan *Client

	runner *runner.Runner
	ctx    context.Context // runs requested over the socket use this
	events <-chan runner.Event

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub with no runner attached
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// SetRunner attaches r. Must be called before Run.
func (h *Hub) SetRunner(ctx context.Context, r *runner.Runner) {
	h.runner = r
	h.ctx = ctx
	h.events = r.Subscribe()
}

// Run owns client registration and event relay until Stop is called
func (h *Hub) Run() {
	defer h.shutdown()

	for {
		select {
		case <-h.done:
			return

		case c := <-h.unregister:
			h.drop(c)
			log.Printf("[WebSocket] Client disconnected (total: %d)", h.ClientCount())

		case event, ok := <-h.events:
			if !ok {
				h.events = nil
				continue
			}
			h.relay(ServerMessage{Type: string(event.Type), Data: event})
		}
	}
}

// Stop signals Run to close every client and return
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// relay queues msg for every client; slow clients are disconnected
func (h *Hub) relay(msg ServerMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// add registers c unless the hub has stopped
func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return false
	default:
	}
	h.clients[c] = struct{}{}
	log.Printf("[WebSocket] Client connected (total: %d)", len(h.clients))
	return true
}

func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if h.runner != nil && h.events != nil {
		h.runner.Unsubscribe(h.events)
	}
	log.Println("[WebSocket] Hub stopped")
}

// handle answers a single client request
func (h *Hub) handle(msg ClientMessage) ServerMessage {
	if h.runner == nil {
		return ServerMessage{Type: "error", Data: "no runner attached"}
	}

	switch msg.Type {
	case "start":
		started := h.runner.Start(h.ctx)
		log.Printf("[WebSocket] Client requested run (started: %v)", started)
		return ServerMessage{Type: "started", Data: gin.H{"started": started}}
	case "state":
		return ServerMessage{Type: "state", Data: h.runner.State()}
	default:
		return ServerMessage{Type: "error", Data: "unknown message type: " + msg.Type}
	}
}

// Client is one WebSocket connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan ServerMessage
}

// reply queues msg for this client only, if it is still registered
func (c *Client) reply(msg ServerMessage) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) readLoop() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] Read error: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(ServerMessage{Type: "error", Data: "invalid message format"})
			continue
		}
		c.reply(c.hub.handle(msg))
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWebSocket upgrades the request and registers the connection with hub
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			log.Printf("[WebSocket] Upgrade error: %v", err)
			return
		}

		c := &Client{hub: hub, conn: conn, send: make(chan ServerMessage, sendBuffer)}
		if !hub.add(c) {
			conn.Close()
			return
		}

		go c.writeLoop()
		go c.readLoop()
	}
}
