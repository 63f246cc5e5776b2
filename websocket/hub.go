package websocket

import (
	"sync"

	"go.uber.org/zap"

	"tonearm/types"
)

// AllScans is the subscription key for clients that want every scan's
// events rather than one specific scan.
const AllScans = "all"

// Hub interface defines the methods for managing WebSocket connections
type Hub interface {
	Run()
	ScanEvent(msg types.ScanMessage)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

// hub maintains the set of active clients and broadcasts scan events
// to them
type hub struct {
	// Registered clients mapped by scan ID (or AllScans)
	clients map[string]map[*Client]bool

	// Broadcast channel for scan events
	broadcast chan types.ScanMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	log *zap.Logger

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.ScanMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        logger,
	}
}

// Run starts the hub's main event loop
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.scanID] == nil {
				h.clients[client.scanID] = make(map[*Client]bool)
			}
			h.clients[client.scanID][client] = true
			h.mu.Unlock()
			h.log.Debug("websocket client connected", zap.String("scanId", client.scanID))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.scanID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.scanID)
					}
				}
			}
			h.mu.Unlock()
			h.log.Debug("websocket client disconnected", zap.String("scanId", client.scanID))

		case message := <-h.broadcast:
			// Full lock: deliver may drop stalled clients from the map.
			h.mu.Lock()
			h.deliver(h.clients[message.ScanID], message)
			h.deliver(h.clients[AllScans], message)
			h.mu.Unlock()
		}
	}
}

// deliver fans a message out to one subscriber set, dropping clients
// whose send buffer is full.
func (h *hub) deliver(clients map[*Client]bool, message types.ScanMessage) {
	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(clients, client)
		}
	}
}

// ScanEvent queues a scan event for broadcast. It never blocks the
// caller: scan traversal callbacks must not stall on slow clients.
func (h *hub) ScanEvent(msg types.ScanMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("websocket broadcast channel full, dropping scan event",
			zap.String("scanId", msg.ScanID))
	}
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
