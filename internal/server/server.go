// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matthewbaird/chaincodegen/internal/activity"
	"github.com/matthewbaird/chaincodegen/internal/handler"
	"github.com/matthewbaird/chaincodegen/internal/live"
	"github.com/matthewbaird/chaincodegen/internal/pipeline"
	"github.com/matthewbaird/chaincodegen/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Projects store.Store
	Activity activity.Store
	Pipeline *pipeline.Pipeline
}

// useMiddleware installs the request id, access log and panic recovery
// middleware. It must run before any route is registered.
func useMiddleware(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Default(), NoColor: true}))
	r.Use(middleware.Recoverer)
}

// NewRouter registers every route behind the middleware stack.
func NewRouter(cfg Config) http.Handler {
	pl := cfg.Pipeline
	if pl == nil {
		pl = &pipeline.Pipeline{}
	}
	r := chi.NewRouter()
	useMiddleware(r)

	// Health check
	r.Get("/healthz", handler.HandleHealth)

	// --- Catalog and ad hoc generation ---
	gh := handler.NewGenerateHandler(pl)
	r.Get("/v1/blocks", handler.HandleListBlocks)
	r.Post("/v1/generate", gh.HandleGenerate)
	r.Post("/v1/validate", handler.ValidateProject)

	// --- Projects ---
	ph := handler.NewProjectHandler(cfg.Projects, cfg.Activity, pl)
	r.Route("/v1/projects", func(r chi.Router) {
		r.Post("/", ph.CreateProject)
		r.Get("/", ph.ListProjects)
		r.Get("/{id}", ph.GetProject)
		r.Put("/{id}", ph.UpdateProject)
		r.Delete("/{id}", ph.DeleteProject)
		r.Get("/{id}/chaincode", ph.DownloadChaincode)
		r.Post("/{id}/generate", ph.GenerateProject)
		r.Get("/{id}/generations", ph.ListGenerations)
	})

	// --- Activity ---
	ah := handler.NewActivityHandler(cfg.Activity)
	r.Get("/v1/activity/entity/{entity_type}/{entity_id}", ah.HandleGetEntityActivity)
	r.Post("/v1/activity/search", ah.HandleSearchActivity)

	// --- Live editing ---
	live.RegisterRoutes(r, pl)

	return r
}

// Run starts the HTTP server with all routes registered and shuts it down
// when ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s", addr)

	server := &http.Server{
		Addr:    addr,
		Handler: NewRouter(cfg),
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
