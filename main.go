package main

import (
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/splitsync/splitsync/internal/config"
	"github.com/splitsync/splitsync/internal/handlers"
	"github.com/splitsync/splitsync/internal/security"
	"github.com/splitsync/splitsync/internal/services"
	_ "github.com/splitsync/splitsync/pb_migrations"
)

func main() {
	pb := pocketbase.New()

	cfg := config.Load()
	clock := clockwork.NewRealClock()

	store := services.NewSessionStore(services.NewCodeGenerator(), clock)
	hub := services.NewHub(services.NewMetrics())
	hub.SetHandler(services.NewProtocol(store, hub))
	archive := services.NewArchive(pb, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	go sweepIdleSessions(ctx, store, clock, cfg.SessionMaxIdle)

	pb.OnServe().BindFunc(func(se *core.ServeEvent) error {
		ws := handlers.NewWSHandler(hub, security.NewOriginValidator(cfg.AllowedOrigins))
		races := handlers.NewRaceHandlers(store, archive)

		se.Router.GET("/ws", ws.HandleWebSocket)
		se.Router.GET("/api/races", races.ListRaces)
		se.Router.POST("/api/races", races.SaveRace)
		se.Router.GET("/api/splitsync/metrics", handlers.HandleMetrics(hub))
		se.Router.GET("/api/splitsync/health", handlers.HandleHealth(hub))

		return se.Next()
	})

	if err := pb.Start(); err != nil {
		log.Fatal(err)
	}
}

// sweepIdleSessions periodically drops stopped sessions that have gone
// quiet past the configured idle limit.
func sweepIdleSessions(ctx context.Context, store *services.SessionStore, clock clockwork.Clock, maxIdle time.Duration) {
	ticker := clock.NewTicker(config.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if removed := store.SweepIdle(maxIdle); removed > 0 {
				log.Printf("idle sweep removed %d session(s)", removed)
			}
		}
	}
}
