package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Event announces a change so connected dashboards can refresh.
type Event struct {
	Type     string      `json:"type"`
	Resource string      `json:"resource,omitempty"`
	Action   string      `json:"action,omitempty"`
	ID       string      `json:"id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	At       time.Time   `json:"at"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

// Client is one connected browser.
type Client struct {
	send     chan []byte
	username string
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast requests until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.WithField("username", client.username).Debug("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			logrus.WithField("username", client.username).Debug("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than block every other client.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish queues an event for every client without blocking the caller.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("Error marshaling WebSocket event")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logrus.Warn("WebSocket broadcast channel is full")
	}
}

func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) join(username string) (*Client, bool) {
	client := &Client{send: make(chan []byte, sendBuffer), username: username}
	select {
	case h.register <- client:
		return client, true
	case <-h.done:
		return nil, false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ServeFiberWS pumps events to an upgraded connection until either side closes.
func (h *Hub) ServeFiberWS(c *fiberws.Conn, username string) {
	client, ok := h.join(username)
	if !ok {
		_ = c.Close()
		return
	}
	go h.writePump(client, c)
	h.readPump(client, c)
}

func (h *Hub) writePump(client *Client, c *fiberws.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.WriteMessage(fiberws.CloseMessage, []byte{})
				return
			}
			if err := c.WriteMessage(fiberws.TextMessage, message); err != nil {
				logrus.WithError(err).WithField("username", client.username).Debug("WebSocket write error")
				return
			}
		case <-ticker.C:
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(fiberws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(client *Client, c *fiberws.Conn) {
	defer func() {
		h.leave(client)
		_ = c.Close()
	}()

	c.SetReadLimit(maxMessageSize)
	_ = c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if fiberws.IsUnexpectedCloseError(err, fiberws.CloseGoingAway, fiberws.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("username", client.username).Warn("WebSocket unexpected close")
			}
			return
		}
	}
}
