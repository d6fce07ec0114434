package helpers

import (
	"context"
	"encoding/json"
	"net"
	"sync"

	"github.com/coder/websocket"

	"github.com/splitsync/splitsync/internal/models"
)

// MockWSConn implements the services.Conn interface for testing. Writes are
// recorded for inspection; reads block until a frame is queued with
// QueueInbound, the context expires, or the connection is closed.
type MockWSConn struct {
	mu          sync.RWMutex
	messages    [][]byte
	inbound     chan []byte
	closed      chan struct{}
	closeOnce   sync.Once
	closeStatus websocket.StatusCode
	closeReason string
	writeErr    error
}

// NewMockWSConn creates a new mock WebSocket connection
func NewMockWSConn() *MockWSConn {
	return &MockWSConn{
		messages: make([][]byte, 0),
		inbound:  make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

// Write records a message being sent
func (m *MockWSConn) Write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.closed:
		return net.ErrClosed
	default:
	}

	if m.writeErr != nil {
		return m.writeErr
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	m.messages = append(m.messages, dataCopy)
	return nil
}

// Read blocks until a queued frame, context expiry or close.
func (m *MockWSConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case data := <-m.inbound:
		return websocket.MessageText, data, nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case <-m.closed:
		return 0, nil, net.ErrClosed
	}
}

// Ping pretends the peer answered.
func (m *MockWSConn) Ping(ctx context.Context) error {
	select {
	case <-m.closed:
		return net.ErrClosed
	default:
		return nil
	}
}

// Close marks the connection as closed
func (m *MockWSConn) Close(status websocket.StatusCode, reason string) error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closeStatus = status
		m.closeReason = reason
		m.mu.Unlock()
		close(m.closed)
	})
	return nil
}

// QueueInbound hands a frame to the next Read call.
func (m *MockWSConn) QueueInbound(data []byte) {
	m.inbound <- data
}

// ReceivedMessages returns copies of all messages written to this
// connection.
func (m *MockWSConn) ReceivedMessages() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([][]byte, len(m.messages))
	for i, msg := range m.messages {
		msgCopy := make([]byte, len(msg))
		copy(msgCopy, msg)
		result[i] = msgCopy
	}
	return result
}

// DecodedMessages unmarshals everything written to this connection.
func (m *MockWSConn) DecodedMessages() []models.WSMessage {
	raw := m.ReceivedMessages()
	out := make([]models.WSMessage, 0, len(raw))
	for _, data := range raw {
		var msg models.WSMessage
		if err := json.Unmarshal(data, &msg); err == nil {
			out = append(out, msg)
		}
	}
	return out
}

// IsClosed returns whether the connection is closed
func (m *MockWSConn) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// SetWriteErr sets an error to be returned on Write calls
func (m *MockWSConn) SetWriteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}
