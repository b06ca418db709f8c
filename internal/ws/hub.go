package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Event types pushed over the subscription surface. These mirror the
// notification types of the notification module plus row-delta events for
// the entities a client's open view cares about.
const (
	EventNotification       = "notification"
	EventConnectionUpdated  = "connection_updated"
	EventConnectionChat     = "connection_chat"
	EventProjectUpdated     = "project_updated"
	EventProjectChat        = "project_chat"
	EventMembershipUpdated  = "membership_updated"
)

// Message is the envelope for every event sent to a subscribed client.
type Message struct {
	Event     string      `json:"event"`
	CompanyID string      `json:"company_id,omitempty"`
	Data      interface{} `json:"data"`
}

// Client is one connected websocket subscriber, scoped to a company view.
type Client struct {
	ID        string
	CompanyID uuid.UUID
	Conn      *websocket.Conn
	Send      chan []byte
	Hub       *Hub
}

// Hub fans notifications and row deltas out to clients subscribed to a
// company's view, mirroring the teacher's account-scoped hub but keyed by
// Company instead of the teacher's tenant Account.
type Hub struct {
	clients        map[*Client]bool
	companyClients map[uuid.UUID]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:        make(map[*Client]bool),
		companyClients: make(map[uuid.UUID]map[*Client]bool),
		broadcast:      make(chan *Message, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if _, ok := h.companyClients[client.CompanyID]; !ok {
				h.companyClients[client.CompanyID] = make(map[*Client]bool)
			}
			h.companyClients[client.CompanyID][client] = true
			h.mu.Unlock()
			log.Printf("[WS Hub] client registered: %s (company %s)", client.ID, client.CompanyID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				if set, ok := h.companyClients[client.CompanyID]; ok {
					delete(set, client)
					if len(set) == 0 {
						delete(h.companyClients, client.CompanyID)
					}
				}
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("[WS Hub] client unregistered: %s", client.ID)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS Hub] marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.CompanyID == "" {
		return
	}
	companyID, err := uuid.Parse(msg.CompanyID)
	if err != nil {
		return
	}
	clients, ok := h.companyClients[companyID]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.Send <- data:
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) Register(client *Client)   { h.register <- client }
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

// BroadcastToCompany fans an event out to every client currently viewing
// companyID. Called synchronously, in the same transaction as the write
// that produced the event, per the notification module's contract.
func (h *Hub) BroadcastToCompany(companyID uuid.UUID, event string, data interface{}) {
	h.broadcast <- &Message{Event: event, CompanyID: companyID.String(), Data: data}
}

func (h *Hub) CompanyClientCount(companyID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.companyClients[companyID])
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived) {
				log.Printf("[WS Client] read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Event == "ping" {
			c.Send <- []byte(`{"event":"pong"}`)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
