package handlers

import (
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"

	"github.com/splitsync/splitsync/internal/models"
	"github.com/splitsync/splitsync/internal/security"
	"github.com/splitsync/splitsync/internal/services"
)

// WSHandler upgrades HTTP requests to the bidirectional sync transport.
type WSHandler struct {
	hub     *services.Hub
	origins *security.OriginValidator
}

func NewWSHandler(hub *services.Hub, origins *security.OriginValidator) *WSHandler {
	return &WSHandler{
		hub:     hub,
		origins: origins,
	}
}

// HandleWebSocket is the PocketBase route face of ServeWS.
func (h *WSHandler) HandleWebSocket(re *core.RequestEvent) error {
	h.ServeWS(re.Response, re.Request)
	return nil
}

// ServeWS accepts the connection, assigns the connection-scoped user id,
// announces it before any session binding occurs, and hands the connection
// to the hub. Blocks until the connection shuts down.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.origins.AcceptOptions())
	if err != nil {
		log.Printf("websocket accept failed: %v", err)
		return
	}

	userID := uuid.New().String()
	client := services.NewClient(conn, h.hub, userID)
	h.hub.ClientConnected(client)
	client.Start()

	h.hub.SendTo(client, &models.WSMessage{
		Type:   models.MsgTypeConnected,
		UserID: userID,
	})

	<-client.Done()
}
