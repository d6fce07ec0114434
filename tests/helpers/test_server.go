package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"

	"github.com/splitsync/splitsync/internal/handlers"
	"github.com/splitsync/splitsync/internal/security"
	"github.com/splitsync/splitsync/internal/services"
)

// NewSyncServer starts the full sync stack (store, hub, protocol, websocket
// handler) behind an httptest server. Cleanup is registered on t.
func NewSyncServer(t *testing.T) (*httptest.Server, *services.SessionStore) {
	t.Helper()

	store := services.NewSessionStore(services.NewCodeGenerator(), clockwork.NewRealClock())
	hub := services.NewHub(services.NewMetrics())
	hub.SetHandler(services.NewProtocol(store, hub))

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	ws := handlers.NewWSHandler(hub, security.NewOriginValidator([]string{"*"}))
	srv := httptest.NewServer(http.HandlerFunc(ws.ServeWS))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	return srv, store
}

// WSURL rewrites an httptest server URL to the ws scheme.
func WSURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// NewArchiveApp spins up an isolated PocketBase instance with the races
// collection installed, mirroring the production migration.
func NewArchiveApp(t *testing.T) core.App {
	t.Helper()

	app, err := tests.NewTestApp(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(app.Cleanup)

	races := core.NewBaseCollection("races")
	races.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 100})
	races.Fields.Add(&core.NumberField{Name: "total_time"})
	races.Fields.Add(&core.DateField{Name: "date", Required: true})
	races.Fields.Add(&core.NumberField{Name: "participant_count"})
	races.Fields.Add(&core.JSONField{Name: "laps", MaxSize: 51200})

	if err := app.Save(races); err != nil {
		t.Fatalf("failed to create races collection: %v", err)
	}

	return app
}
