// Command hecated runs the Hecate feature server: it wires the
// Storage Gateway, Feature Store, Authorization Engine, Tile Engine,
// and Worker Queue together and serves the HTTP API, generalizing the
// teacher's cmd/server/main.go wiring.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hecate-project/hecate/internal/config"
	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/httpapi"
	"github.com/hecate-project/hecate/internal/queue"
	"github.com/hecate-project/hecate/internal/store"
	"github.com/hecate-project/hecate/internal/tile"
)

const shutdownGrace = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Printf("hecated: %v", err)
		return 1
	}

	gw, err := gateway.Open(cfg.Database, cfg.DatabaseReplicas, cfg.DatabaseSandbox, gateway.MinVersions{
		Postgres: 130000,
		PostGIS:  "3.0",
	})
	if err != nil {
		log.Printf("hecated: storage gateway: %v", err)
		return 1
	}
	defer gw.Close()

	matrix, err := config.LoadMatrix(cfg.AuthPath)
	if err != nil {
		log.Printf("hecated: policy matrix: %v", err)
		return 1
	}

	schema, err := config.LoadSchema(cfg.SchemaPath)
	if err != nil {
		log.Printf("hecated: property schema: %v", err)
		return 1
	}

	webhooks := store.NewWebhooksRepo(gw)
	bounds := store.NewBoundsRepo(gw)
	styles := store.NewStylesRepo(gw)
	meta := store.NewMetaRepo(gw)

	// featureStore and the Worker Queue each depend on the other
	// (the store announces finalized deltas to the queue; the queue
	// invalidates tiles rendered from the store), so the queue's
	// enqueuer is wired in after both exist.
	featureStore := store.NewPostgresStore(gw, schema, nil)
	tiles := tile.NewEngine(gw, featureStore)
	q := queue.New(webhooks, tiles)
	featureStore.SetEnqueuer(q)

	lookup := httpapi.NewUserLookup(gw)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go q.Run(ctx)
	defer q.Close()

	handler := httpapi.New(gw, featureStore, bounds, webhooks, styles, meta, matrix, lookup, tiles, q, schema)
	router := handler.SetupRoutes()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("hecated: listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("hecated: %v", err)
		return 1
	}

	return 0
}
