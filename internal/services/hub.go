package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/splitsync/splitsync/internal/config"
	"github.com/splitsync/splitsync/internal/models"
)

// MessageHandler consumes inbound frames and connection closures on the hub
// goroutine. The protocol handler implements it.
type MessageHandler interface {
	HandleMessage(c *Client, data []byte)
	HandleDisconnect(c *Client)
}

// Hub is the connection registry: it maps each live session id to the set
// of clients currently attached to it and fans outbound messages out to
// them. Inbound frames and disconnects are consumed by the single Run
// goroutine, so each message is processed to completion — including its
// broadcast — before the next one is handled. Fan-out only enqueues onto
// per-client buffered send channels; no I/O happens inside dispatch.
type Hub struct {
	// Session connections: sessionId -> set of clients
	sessions map[string]map[*Client]bool

	// Inbound frames from client read pumps
	inbound chan *ClientMessage

	// Closed connections awaiting cleanup
	unregister chan *Client

	handler MessageHandler
	metrics *Metrics

	mu sync.RWMutex
}

func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		inbound:    make(chan *ClientMessage, config.HubInboundBufferSize),
		unregister: make(chan *Client, config.HubUnregisterBufferSize),
		metrics:    metrics,
	}
}

// SetHandler wires the protocol handler. Must be called before Run.
func (h *Hub) SetHandler(handler MessageHandler) {
	h.handler = handler
}

func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// Run processes inbound messages and disconnects until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("hub shutting down")
			return

		case msg := <-h.inbound:
			h.handler.HandleMessage(msg.Client, msg.Message)

		case client := <-h.unregister:
			h.metrics.DecrementConnections()
			h.handler.HandleDisconnect(client)
		}
	}
}

// ClientConnected records a freshly accepted connection, before any
// session binding exists.
func (h *Hub) ClientConnected(c *Client) {
	h.metrics.IncrementConnections()
}

// NotifyDisconnect hands a closed connection to the hub goroutine for
// cleanup. Called from the client's read pump.
func (h *Hub) NotifyDisconnect(c *Client) {
	h.unregister <- c
}

// Attach binds a client's connection to a session's fan-out set.
func (h *Hub) Attach(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.sessions[sessionID]
	if set == nil {
		set = make(map[*Client]bool)
		h.sessions[sessionID] = set
		h.metrics.IncrementSessions()
	}
	set[c] = true

	log.Printf("client attached: session=%s user=%s (connections in session: %d)", sessionID, c.UserID(), len(set))
}

// Detach removes the client from the session's fan-out set; an emptied set
// is dropped from the registry. This bookkeeping is independent of session
// deletion in the store, which is driven by participant count.
func (h *Hub) Detach(sessionID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	if _, exists := set[c]; !exists {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.sessions, sessionID)
		h.metrics.DecrementSessions()
	}
}

// SessionSize returns the number of connections attached to a session.
func (h *Hub) SessionSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Broadcast sends the message to every connection currently attached to
// the session, silently skipping closed ones. The client set is
// snapshotted before iteration so a client detaching mid-fan-out cannot
// invalidate it.
func (h *Hub) Broadcast(sessionID string, msg *models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("error marshaling broadcast: %v", err)
		h.metrics.IncrementBroadcastErrors()
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.sessions[sessionID]))
	for c := range h.sessions[sessionID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.Send(data)
	}
}

// SendTo delivers a message to a single client.
func (h *Hub) SendTo(c *Client, msg *models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("error marshaling message: %v", err)
		return
	}
	c.Send(data)
}
