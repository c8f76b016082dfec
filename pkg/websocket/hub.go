package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gocomet/delivery-dispatch/pkg/logger"
)

// Client user types
const (
	UserTypeRider     = "rider"
	UserTypeCustomer  = "customer"
	UserTypeDashboard = "dashboard"
)

// Message types pushed by the service
const (
	TypeOrderAssigned   = "order_assigned"
	TypeOrderStatus     = "order_status"
	TypeCustomerMessage = "customer_message"
	TypeDispatchRun     = "dispatch_run"
)

// Publisher is the push side of the hub used by the services
type Publisher interface {
	SendToUser(userID string, message Message)
	BroadcastToType(userType string, message Message)
	BroadcastToOrder(orderID string, message Message)
}

// Discard is a Publisher that drops every message
type Discard struct{}

func (Discard) SendToUser(string, Message)       {}
func (Discard) BroadcastToType(string, Message)  {}
func (Discard) BroadcastToOrder(string, Message) {}

// Hub maintains active client connections and routes messages to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *logger.Logger
}

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates a new WebSocket hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// Run processes registrations until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Client registered",
				logger.String("client_id", client.ID),
				logger.String("user_type", client.UserType),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Client unregistered", logger.String("client_id", client.ID))
			}
			h.mu.Unlock()
		}
	}
}

// Register registers a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser sends a message to every connection of a user
func (h *Hub) SendToUser(userID string, message Message) {
	h.deliver(message, func(c *Client) bool { return c.UserID == userID })
}

// BroadcastToType sends a message to all clients of a user type
func (h *Hub) BroadcastToType(userType string, message Message) {
	h.deliver(message, func(c *Client) bool { return c.UserType == userType })
}

// BroadcastToOrder sends a message to clients subscribed to an order
func (h *Hub) BroadcastToOrder(orderID string, message Message) {
	h.deliver(message, func(c *Client) bool { return c.IsSubscribedToOrder(orderID) })
}

func (h *Hub) deliver(message Message, match func(*Client) bool) int {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal message", logger.Err(err), logger.String("type", message.Type))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.Send <- data:
			count++
		default:
			h.logger.Warn("Client send buffer full, dropping message",
				logger.String("client_id", client.ID),
				logger.String("type", message.Type),
			)
		}
	}
	return count
}

// GetActiveConnections returns the number of active connections
func (h *Hub) GetActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
