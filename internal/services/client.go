package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/splitsync/splitsync/internal/config"
	"github.com/splitsync/splitsync/internal/models"
)

// Conn is the subset of *websocket.Conn the client uses. Tests substitute
// a mock implementation.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Ping(ctx context.Context) error
	Close(status websocket.StatusCode, reason string) error
}

// Client owns one WebSocket connection: a read pump feeding the hub and a
// write pump draining the outbox. A client starts unbound and binds to at
// most one session for its lifetime.
type Client struct {
	conn   Conn
	hub    *Hub
	userID string
	outbox chan []byte

	// Session binding, set once by the protocol handler
	bindMu    sync.RWMutex
	sessionID string
	username  string

	// Inbound frame budget for the current rate window
	rateMu      sync.Mutex
	frames      int
	windowStart time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	closeMu sync.Mutex
	closed  bool
}

func NewClient(conn Conn, hub *Hub, userID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		conn:        conn,
		hub:         hub,
		userID:      userID,
		outbox:      make(chan []byte, config.ClientSendBufferSize),
		windowStart: time.Now(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// UserID returns the connection-scoped identifier assigned at accept time.
func (c *Client) UserID() string {
	return c.userID
}

// Bind records the session this connection belongs to.
func (c *Client) Bind(sessionID, username string) {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()
	c.sessionID = sessionID
	c.username = username
}

// Binding returns the bound session id, or "" while unbound.
func (c *Client) Binding() string {
	c.bindMu.RLock()
	defer c.bindMu.RUnlock()
	return c.sessionID
}

// Username returns the display name recorded at bind time.
func (c *Client) Username() string {
	c.bindMu.RLock()
	defer c.bindMu.RUnlock()
	return c.username
}

// Start launches both pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed when the client shuts down.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.outbox:
			if !ok {
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			ctx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				log.Printf("write failed (session=%s, user=%s): %v", c.Binding(), c.userID, err)
				c.hub.metrics.IncrementBroadcastErrors()
				return
			}
			c.hub.metrics.IncrementMessagesSent()

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, config.WriteTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ping failed (session=%s, user=%s): %v", c.Binding(), c.userID, err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.NotifyDisconnect(c)
		c.Close()
	}()

	for {
		// Each read gets the pong window; a silent peer times out here.
		ctx, cancel := context.WithTimeout(c.ctx, config.PongTimeout)
		_, frame, err := c.conn.Read(ctx)
		cancel()

		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				log.Printf("read failed (session=%s, user=%s): %v", c.Binding(), c.userID, err)
				c.hub.metrics.IncrementConnectionErrors()
			}
			return
		}

		if !c.admitFrame() {
			log.Printf("rate limit exceeded (session=%s, user=%s)", c.Binding(), c.userID)
			c.hub.metrics.IncrementRateLimitViolations()
			c.hub.SendTo(c, &models.WSMessage{
				Type:    models.MsgTypeError,
				Message: "Rate limit exceeded. Please slow down.",
			})
			continue
		}

		c.hub.metrics.IncrementMessagesReceived()
		c.hub.inbound <- &ClientMessage{Client: c, Message: frame}
	}
}

// admitFrame charges the frame against the current rate window, opening a
// new window when the old one has lapsed.
func (c *Client) admitFrame() bool {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()

	now := time.Now()
	if now.Sub(c.windowStart) > config.RateLimitWindow {
		c.frames = 0
		c.windowStart = now
	}

	c.frames++
	return c.frames <= config.MaxMessagesPerSecond
}

// Send queues a frame for delivery. Returns false when the client is closed
// or its outbox is full; a full outbox marks the client too slow to keep up
// and disconnects it.
func (c *Client) Send(frame []byte) bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.outbox <- frame:
		return true
	default:
		log.Printf("outbox full, dropping slow client (session=%s, user=%s)", c.Binding(), c.userID)
		c.hub.metrics.IncrementBroadcastErrors()
		go c.Close()
		return false
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.cancel()
	close(c.outbox)
	_ = c.conn.Close(websocket.StatusNormalClosure, "")
}

// ClientMessage is one raw inbound frame tagged with its origin.
type ClientMessage struct {
	Client  *Client
	Message []byte
}
