package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/splitsync/splitsync/internal/config"
	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/security"
)

// Protocol consumes inbound frames from the hub, drives the session store,
// and produces the direct replies and broadcasts the sync contract calls
// for. Every failure is reported only to the originating connection as an
// error message; other participants never observe a rejected command.
type Protocol struct {
	store *SessionStore
	hub   *Hub
}

func NewProtocol(store *SessionStore, hub *Hub) *Protocol {
	return &Protocol{
		store: store,
		hub:   hub,
	}
}

// HandleMessage validates and dispatches one inbound frame. Runs on the
// hub goroutine; an unexpected fault is recovered here and converted into
// a generic error reply instead of propagating.
func (p *Protocol) HandleMessage(c *Client, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recovered while handling message (user=%s): %v", c.UserID(), r)
			p.sendError(c, "Internal error while handling message")
		}
	}()

	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		p.sendError(c, "Invalid message format")
		return
	}

	if !security.IsValidMessageType(msg.Type) {
		p.sendError(c, fmt.Sprintf("Unknown message type: %s", msg.Type))
		return
	}

	if err := security.ValidateMessageFields(&msg); err != nil {
		p.sendError(c, security.SanitizeErrorMessage(err))
		return
	}

	switch msg.Type {
	case models.MsgTypeCreateSession:
		p.handleCreateSession(c, &msg)
	case models.MsgTypeJoinSession:
		p.handleJoinSession(c, &msg)
	default:
		p.handleStopwatchCommand(c, msg.Type)
	}
}

// handleCreateSession allocates a session with the requester as its only
// participant, binds and attaches the connection, confirms, and pushes the
// initial state snapshot to the creator.
func (p *Protocol) handleCreateSession(c *Client, msg *models.WSMessage) {
	if c.Binding() != "" {
		p.sendError(c, "Connection is already in a session")
		return
	}
	if p.store.Count() >= config.MaxSessionsPerInstance {
		p.sendError(c, "Too many active sessions, try again later")
		return
	}

	username := strings.TrimSpace(msg.Username)
	sessionID := p.store.CreateSession(c.UserID(), username)
	c.Bind(sessionID, username)
	p.hub.Attach(sessionID, c)

	ok := true
	p.hub.SendTo(c, &models.WSMessage{
		Type:      models.MsgTypeCreateSession,
		SessionID: sessionID,
		Success:   &ok,
	})

	if snap, found := p.store.GetSession(sessionID); found {
		p.hub.SendTo(c, &models.WSMessage{Type: models.MsgTypeSyncState, Data: snap})
	}
}

// handleJoinSession adds the requester to an existing session. On failure
// the connection stays unbound; on success everyone in the session —
// including the new arrival — receives a user_joined event carrying a
// fresh snapshot.
func (p *Protocol) handleJoinSession(c *Client, msg *models.WSMessage) {
	if c.Binding() != "" {
		p.sendError(c, "Connection is already in a session")
		return
	}
	if p.hub.SessionSize(msg.SessionID) >= config.MaxConnectionsPerSession {
		p.sendError(c, "Session is full")
		return
	}

	username := strings.TrimSpace(msg.Username)
	if !p.store.JoinSession(msg.SessionID, c.UserID(), username) {
		p.sendError(c, "Session not found")
		return
	}

	c.Bind(msg.SessionID, username)
	p.hub.Attach(msg.SessionID, c)

	ok := true
	p.hub.SendTo(c, &models.WSMessage{
		Type:      models.MsgTypeJoinSession,
		SessionID: msg.SessionID,
		Success:   &ok,
	})

	if snap, found := p.store.GetSession(msg.SessionID); found {
		p.hub.Broadcast(msg.SessionID, &models.WSMessage{
			Type:     models.MsgTypeUserJoined,
			UserID:   c.UserID(),
			Username: username,
			Data:     snap,
		})
	}
}

// handleStopwatchCommand runs one of the timer transitions against the
// bound session. A successful transition fans a fresh snapshot out to the
// whole session; a rejected one replies only to the requester.
func (p *Protocol) handleStopwatchCommand(c *Client, msgType string) {
	sessionID := c.Binding()
	if sessionID == "" {
		p.sendError(c, "Join or create a session first")
		return
	}

	var ok bool
	var failure string
	switch msgType {
	case models.MsgTypeStartStopwatch:
		ok = p.store.StartStopwatch(sessionID)
		failure = "Stopwatch is already running"
	case models.MsgTypeStopStopwatch:
		ok = p.store.StopStopwatch(sessionID)
		failure = "Stopwatch is not running"
	case models.MsgTypeResetStopwatch:
		ok = p.store.ResetStopwatch(sessionID)
		failure = "Session not found"
	case models.MsgTypeLapStopwatch:
		_, ok = p.store.RecordLap(sessionID)
		failure = "Cannot record a lap while the stopwatch is stopped"
	}

	if !ok {
		// A command can fail either because the transition is invalid or
		// because the session vanished underneath the binding.
		if _, exists := p.store.GetSession(sessionID); !exists {
			failure = "Session not found"
		}
		p.sendError(c, failure)
		return
	}

	if snap, found := p.store.GetSession(sessionID); found {
		p.hub.Broadcast(sessionID, &models.WSMessage{Type: models.MsgTypeSyncState, Data: snap})
	}
}

// HandleDisconnect runs when a connection's read pump exits. Participant
// removal is immediate — there is no reconnect grace period, so a dropped
// connection surfaces as user_left even if the same person rejoins moments
// later under a new id.
func (p *Protocol) HandleDisconnect(c *Client) {
	sessionID := c.Binding()
	if sessionID == "" {
		return
	}

	p.hub.Detach(sessionID, c)
	if !p.store.RemoveParticipant(sessionID, c.UserID()) {
		return
	}

	// If the session was deleted with its last participant there is no
	// broadcast target left.
	if snap, found := p.store.GetSession(sessionID); found {
		p.hub.Broadcast(sessionID, &models.WSMessage{
			Type:   models.MsgTypeUserLeft,
			UserID: c.UserID(),
			Data:   snap,
		})
	}
}

func (p *Protocol) sendError(c *Client, message string) {
	p.hub.SendTo(c, &models.WSMessage{
		Type:    models.MsgTypeError,
		Message: message,
	})
}
