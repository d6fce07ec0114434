package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"github.com/splitsync/splitsync/internal/services"
)

// HandleMetrics returns sync server metrics
func HandleMetrics(hub *services.Hub) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		snapshot := hub.Metrics().Snapshot()
		return e.JSON(http.StatusOK, snapshot)
	}
}

// HandleHealth returns server health status
func HandleHealth(hub *services.Hub) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		snapshot := hub.Metrics().Snapshot()

		status := http.StatusOK
		if snapshot.HealthStatus == "critical" {
			status = http.StatusServiceUnavailable
		}

		response := map[string]any{
			"status":             snapshot.HealthStatus,
			"active_connections": snapshot.ActiveConnections,
			"active_sessions":    snapshot.ActiveSessions,
			"uptime_seconds":     snapshot.UptimeSeconds,
		}

		return e.JSON(status, response)
	}
}
