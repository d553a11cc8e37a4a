// Package websocket implements the live round feed. Players watching a round on their phones
// keep a WebSocket open to GET /api/v1/rounds/:id/live; whenever anyone creates, corrects or
// deletes that round the server pushes an Event down every open connection, so scorecards
// refresh without polling.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Event types pushed to watchers.
const (
	RoundCreated = "round.created"
	RoundUpdated = "round.updated"
	RoundDeleted = "round.deleted"
)

// clientBuffer is how many unsent events a slow client may fall behind before it is dropped.
const clientBuffer = 16

// Event is the JSON frame sent to watchers. Round is omitted for deletions.
type Event struct {
	Type    string `json:"type"`
	RoundID string `json:"round_id"`
	Round   any    `json:"round,omitempty"`
}

// Client is one open connection watching one round.
type Client struct {
	RoundID string
	Send    chan []byte // Closed by the Hub when the client is removed
}

// NewClient returns a client for roundID with a buffered Send channel.
func NewClient(roundID string) *Client {
	return &Client{RoundID: roundID, Send: make(chan []byte, clientBuffer)}
}

type message struct {
	roundID string
	data    []byte
}

// Hub tracks watchers per round and fans events out to them.
// All map writes happen on the Run goroutine; mu lets Watchers read concurrently.
type Hub struct {
	clients map[string]map[*Client]bool

	broadcast  chan *message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu       sync.RWMutex
	watchers prometheus.Gauge
	log      *slog.Logger
}

// NewHub creates a Hub. watchers may be nil.
func NewHub(watchers prometheus.Gauge, log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		watchers:   watchers,
		log:        log,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then closes every
// client. Start it once with "go hub.Run(ctx)".
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for roundID, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, roundID)
			}
			h.mu.Unlock()
			h.setGauge(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.RoundID] == nil {
				h.clients[client.RoundID] = make(map[*Client]bool)
			}
			h.clients[client.RoundID][client] = true
			h.mu.Unlock()
			h.addGauge(1)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients[msg.roundID] {
				select {
				case client.Send <- msg.data:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			// A client that cannot keep up is disconnected rather than stalling the others.
			for _, client := range slow {
				h.log.Debug("dropping slow live watcher", "round_id", client.RoundID)
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.RoundID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.RoundID)
	}
	h.addGauge(-1)
}

// Publish encodes ev and queues it for every watcher of ev.RoundID.
// It never blocks: if the queue is full or the hub has stopped, the event is dropped.
func (h *Hub) Publish(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode live event: %w", err)
	}
	select {
	case h.broadcast <- &message{roundID: ev.RoundID, data: data}:
	default:
		h.log.Warn("live event dropped", "round_id", ev.RoundID, "type", ev.Type)
	}
	return nil
}

// Register starts delivering events for client.RoundID to client.
// It reports false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client and closes its Send channel. Unregistering twice is harmless.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Watchers returns how many clients are watching roundID.
func (h *Hub) Watchers(roundID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[roundID])
}

func (h *Hub) addGauge(d float64) {
	if h.watchers != nil {
		h.watchers.Add(d)
	}
}

func (h *Hub) setGauge(v float64) {
	if h.watchers != nil {
		h.watchers.Set(v)
	}
}
