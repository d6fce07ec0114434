package helpers

import (
	"testing"
	"time"

	"github.com/splitsync/splitsync/internal/models"
)

// WaitForMessages polls until the mock conn has received at least n decoded
// messages, failing the test after two seconds.
func WaitForMessages(t *testing.T, conn *MockWSConn, n int) []models.WSMessage {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msgs := conn.DecodedMessages()
		if len(msgs) >= n {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}

	msgs := conn.DecodedMessages()
	t.Fatalf("expected at least %d messages, got %d: %+v", n, len(msgs), msgs)
	return nil
}

// MessagesOfType filters decoded messages by type.
func MessagesOfType(msgs []models.WSMessage, msgType string) []models.WSMessage {
	out := make([]models.WSMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

// WaitForType polls until the mock conn has received at least n messages of
// the given type.
func WaitForType(t *testing.T, conn *MockWSConn, msgType string, n int) []models.WSMessage {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msgs := MessagesOfType(conn.DecodedMessages(), msgType)
		if len(msgs) >= n {
			return msgs
		}
		time.Sleep(5 * time.Millisecond)
	}

	msgs := MessagesOfType(conn.DecodedMessages(), msgType)
	t.Fatalf("expected at least %d %q messages, got %d", n, msgType, len(msgs))
	return nil
}
