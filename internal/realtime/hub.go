package realtime

import "log"

// Hub manages WebSocket clients and routes activity messages by dataset id.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// dataset id -> set of subscribed clients
	subscriptions map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	subscribe  chan subscribeMsg
	broadcast  chan broadcastMsg
}

type subscribeMsg struct {
	client    *Client
	datasetID string
}

type broadcastMsg struct {
	datasetID string
	payload   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan subscribeMsg),
		broadcast:     make(chan broadcastMsg, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("client registered (total: %d)", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				// Remove from all subscriptions
				for datasetID, subs := range h.subscriptions {
					delete(subs, client)
					if len(subs) == 0 {
						delete(h.subscriptions, datasetID)
					}
				}
				log.Printf("client unregistered (total: %d)", len(h.clients))
			}

		case msg := <-h.subscribe:
			if _, ok := h.subscriptions[msg.datasetID]; !ok {
				h.subscriptions[msg.datasetID] = make(map[*Client]bool)
			}
			h.subscriptions[msg.datasetID][msg.client] = true
			log.Printf("client subscribed to dataset %s (subscribers: %d)", msg.datasetID, len(h.subscriptions[msg.datasetID]))

		case msg := <-h.broadcast:
			if subs, ok := h.subscriptions[msg.datasetID]; ok {
				for client := range subs {
					select {
					case client.send <- msg.payload:
					default:
						// Client buffer full, remove it
						close(client.send)
						delete(subs, client)
						delete(h.clients, client)
					}
				}
			}
		}
	}
}
