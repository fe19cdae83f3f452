package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/matthewbaird/chaincodegen/internal/activity"
	"github.com/matthewbaird/chaincodegen/internal/artifact"
	"github.com/matthewbaird/chaincodegen/internal/config"
	"github.com/matthewbaird/chaincodegen/internal/event"
	"github.com/matthewbaird/chaincodegen/internal/eventbus"
	"github.com/matthewbaird/chaincodegen/internal/idgen"
	"github.com/matthewbaird/chaincodegen/internal/pipeline"
	"github.com/matthewbaird/chaincodegen/internal/seed"
	"github.com/matthewbaird/chaincodegen/internal/server"
	"github.com/matthewbaird/chaincodegen/internal/store"

	_ "modernc.org/sqlite"
)

func main() {
	log.SetPrefix("chaincodegen: ")
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("loading .env: %v", err)
	}
	cfg, err := config.Load(os.Getenv("CCGEN_CONFIG"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Stores
	var (
		projects store.Store
		history  activity.Store
	)
	if cfg.Database.URL == "memory" {
		projects = store.NewMemoryStore()
		history = activity.NewMemoryStore()
		log.Println("using in-memory stores")
	} else {
		db, err := sql.Open("sqlite", cfg.Database.URL)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		// SQLite leaves foreign keys off unless asked.
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			log.Fatalf("enabling foreign keys: %v", err)
		}

		ps := store.NewSQLStore(db)
		if err := ps.CreateTable(ctx); err != nil {
			log.Fatalf("creating project table: %v", err)
		}
		as := activity.NewSQLStore(db)
		if err := as.CreateTable(ctx); err != nil {
			log.Fatalf("creating activity table: %v", err)
		}
		projects, history = ps, as
		log.Println("database migrated successfully")
	}

	if cfg.Server.Seed {
		if err := seed.SeedProjects(ctx, projects, idgen.Nanoid{}); err != nil {
			log.Fatalf("seeding projects: %v", err)
		}
	}

	// Events
	bus := eventbus.New(cfg.Events.BufferSize)
	bus.Subscribe("log", eventbus.NewLogConsumer())
	if cfg.Events.NATSURL != "" {
		nc, err := eventbus.NewNATSConsumer(cfg.Events.NATSURL)
		if err != nil {
			log.Fatalf("event bus: %v", err)
		}
		defer nc.Close()
		bus.Subscribe("nats", nc)
	}
	bus.Start(ctx)
	defer bus.Stop()

	recorder := event.NewActivityRecorder(history)
	recorder.SetPublisher(bus)

	// Artifacts
	sinks, err := artifact.FromConfig(ctx, cfg.Artifacts)
	if err != nil {
		log.Fatalf("artifact sinks: %v", err)
	}

	if err := server.Run(ctx, server.Config{
		Port:     cfg.Server.Port,
		Projects: projects,
		Activity: history,
		Pipeline: &pipeline.Pipeline{
			Gofmt:    cfg.Generate.Gofmt,
			Prefix:   cfg.Artifacts.Prefix,
			Sinks:    sinks,
			Recorder: recorder,
		},
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
