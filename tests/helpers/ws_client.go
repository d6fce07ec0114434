package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/splitsync/splitsync/internal/models"
)

// WSClient is a real WebSocket client for integration tests. A background
// goroutine decodes and buffers everything the server sends.
type WSClient struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	messages []models.WSMessage
}

func NewWSClient() *WSClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &WSClient{ctx: ctx, cancel: cancel}
}

// Connect dials the server and starts receiving.
func (c *WSClient) Connect(url string) error {
	dialCtx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", url, err)
	}
	c.conn = conn

	go c.receive()
	return nil
}

func (c *WSClient) receive() {
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			return
		}

		var msg models.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		c.mu.Lock()
		c.messages = append(c.messages, msg)
		c.mu.Unlock()
	}
}

// Send marshals and writes one frame.
func (c *WSClient) Send(msg map[string]any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, data)
}

// Messages returns a copy of everything received so far.
func (c *WSClient) Messages() []models.WSMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.WSMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// CountType returns how many messages of the given type arrived so far.
func (c *WSClient) CountType(msgType string) int {
	return len(MessagesOfType(c.Messages(), msgType))
}

// WaitForType blocks until at least n messages of the given type arrived,
// failing the test after three seconds.
func (c *WSClient) WaitForType(t *testing.T, msgType string, n int) []models.WSMessage {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		msgs := MessagesOfType(c.Messages(), msgType)
		if len(msgs) >= n {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}

	msgs := MessagesOfType(c.Messages(), msgType)
	t.Fatalf("expected at least %d %q messages, got %d: %+v", n, msgType, len(msgs), c.Messages())
	return nil
}

// Close shuts down the connection.
func (c *WSClient) Close() {
	c.cancel()
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}
}
