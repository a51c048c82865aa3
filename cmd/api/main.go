package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ptaregistry.org/internal/application"
	"ptaregistry.org/internal/httpapi"
	"ptaregistry.org/internal/obs"
	"ptaregistry.org/internal/recordstore"
	"ptaregistry.org/internal/recordstore/pg"
	"ptaregistry.org/internal/recordstore/rest"
	"ptaregistry.org/internal/session"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	addr := os.Getenv("PTA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Record-store selection: managed REST backend when PTA_STORE_URL is
	// set, direct Postgres when PTA_PG_DSN is set, in-memory otherwise.
	var (
		records recordstore.Store
		db      *sql.DB
	)
	switch {
	case os.Getenv("PTA_STORE_URL") != "":
		client, err := rest.New(os.Getenv("PTA_STORE_URL"), os.Getenv("PTA_STORE_KEY"))
		if err != nil {
			log.Fatalf("record store: %v", err)
		}
		records = client
	case os.Getenv("PTA_PG_DSN") != "":
		store, err := pg.Open(os.Getenv("PTA_PG_DSN"))
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		records = store
		db = store.DB()
	default:
		log.Printf("no record store configured, using in-memory store")
		records = recordstore.NewInMemory()
	}

	var opts []application.Option
	if raw := os.Getenv("PTA_LOGIN_DELAY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("parse PTA_LOGIN_DELAY: %v", err)
		}
		opts = append(opts, application.WithLoginDelay(d))
	}

	cache := session.New(records)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := cache.Resync(ctx); err != nil {
		cancel()
		log.Fatalf("initial registry sync: %v", err)
	}
	cancel()

	svc, err := application.NewService(records, cache, opts...)
	if err != nil {
		log.Fatalf("service: %v", err)
	}

	api := httpapi.New(svc, httpapi.ReadyProbe{DB: db}, version)

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting pta-registry-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
