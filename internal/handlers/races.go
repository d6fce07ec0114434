package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"github.com/splitsync/splitsync/internal/security"
	"github.com/splitsync/splitsync/internal/services"
)

// RaceHandlers exposes the archive over HTTP: saving a snapshot of a live
// session as a completed race and listing past races.
type RaceHandlers struct {
	store   *services.SessionStore
	archive *services.Archive
}

func NewRaceHandlers(store *services.SessionStore, archive *services.Archive) *RaceHandlers {
	return &RaceHandlers{
		store:   store,
		archive: archive,
	}
}

type saveRaceRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

// SaveRace snapshots the named session and archives it. The archive only
// ever sees the copy; the live session keeps running untouched.
func (h *RaceHandlers) SaveRace(re *core.RequestEvent) error {
	var req saveRaceRequest
	if err := re.BindBody(&req); err != nil {
		return re.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := security.ValidateSessionCode(req.SessionID); err != nil {
		return re.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	snap, ok := h.store.GetSession(req.SessionID)
	if !ok {
		return re.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
	}

	record, err := h.archive.SaveRace(snap, req.Name)
	if err != nil {
		log.Printf("failed to save race (session=%s): %v", req.SessionID, err)
		return re.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save race"})
	}

	return re.JSON(http.StatusOK, map[string]any{"id": record.Id})
}

// ListRaces returns archived races, newest first.
func (h *RaceHandlers) ListRaces(re *core.RequestEvent) error {
	records, err := h.archive.ListRaces(100)
	if err != nil {
		log.Printf("failed to list races: %v", err)
		return re.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list races"})
	}
	return re.JSON(http.StatusOK, records)
}
