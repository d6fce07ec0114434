package models

// WSMessage is the single wire envelope shared by commands, replies and
// broadcast events. Fields not used by a given message type are omitted
// from the JSON.
type WSMessage struct {
	Type      string           `json:"type"`
	SessionID string           `json:"sessionId,omitempty"`
	UserID    string           `json:"userId,omitempty"`
	Username  string           `json:"username,omitempty"`
	Success   *bool            `json:"success,omitempty"`
	Message   string           `json:"message,omitempty"`
	Data      *SessionSnapshot `json:"data,omitempty"`
}

// Client → Server message types
const (
	MsgTypeCreateSession  = "create_session"
	MsgTypeJoinSession    = "join_session"
	MsgTypeStartStopwatch = "start_stopwatch"
	MsgTypeStopStopwatch  = "stop_stopwatch"
	MsgTypeResetStopwatch = "reset_stopwatch"
	MsgTypeLapStopwatch   = "lap_stopwatch"
)

// Server → Client message types
const (
	MsgTypeConnected  = "connected" // connection-scoped id, pushed before any binding
	MsgTypeSyncState  = "sync_state"
	MsgTypeUserJoined = "user_joined"
	MsgTypeUserLeft   = "user_left"
	MsgTypeError      = "error"
)
