package security

import (
	"fmt"

	"github.com/coder/websocket"

	"github.com/splitsync/splitsync/internal/models"
)

// WebSocket message type validation
var validMessageTypes = map[string]bool{
	models.MsgTypeCreateSession:  true,
	models.MsgTypeJoinSession:    true,
	models.MsgTypeStartStopwatch: true,
	models.MsgTypeStopStopwatch:  true,
	models.MsgTypeResetStopwatch: true,
	models.MsgTypeLapStopwatch:   true,
}

// IsValidMessageType checks if an inbound WebSocket message type is one the
// protocol accepts from clients.
func IsValidMessageType(msgType string) bool {
	return validMessageTypes[msgType]
}

// ValidateMessageFields checks the fixed message shape for a given inbound
// type before dispatch. A message that fails here causes an error reply and
// no state change.
func ValidateMessageFields(msg *models.WSMessage) error {
	switch msg.Type {
	case models.MsgTypeJoinSession:
		if msg.SessionID == "" {
			return fmt.Errorf("join_session requires a sessionId")
		}
		if err := ValidateSessionCode(msg.SessionID); err != nil {
			return err
		}
	}

	// Username is optional on create/join; when present it must be clean.
	if msg.Username != "" {
		if _, err := ValidateUsername(msg.Username); err != nil {
			return err
		}
	}

	return nil
}

// OriginValidator validates WebSocket connection origins
type OriginValidator struct {
	allowedPatterns []string
}

// NewOriginValidator creates a new origin validator
func NewOriginValidator(patterns []string) *OriginValidator {
	return &OriginValidator{
		allowedPatterns: patterns,
	}
}

// AcceptOptions returns websocket.AcceptOptions with the configured origin
// patterns.
func (ov *OriginValidator) AcceptOptions() *websocket.AcceptOptions {
	return &websocket.AcceptOptions{
		OriginPatterns: ov.allowedPatterns,
	}
}
