/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the study room booking server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env + environment config, apply flag overrides
  2. Open the persistence store (file or sqlite backend)
  3. Load the room catalog (immutable for this run)
  4. Wire notifiers (outbox always; AMQP when configured)
  5. Build engine, query service, handler, router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port           (overrides ROOMBOOK_PORT)
  -data    data directory             (overrides ROOMBOOK_DATA_DIR)
  -store   backend: file | sqlite     (overrides ROOMBOOK_STORE)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the store, exit.

EXAMPLES:
  # File-backed store in ./data
  ./server

  # SQLite backend on another port
  ./server -port=3000 -store=sqlite

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuskit/roombook/api"
	"github.com/campuskit/roombook/booking"
	"github.com/campuskit/roombook/config"
	"github.com/campuskit/roombook/notify"
	filestore "github.com/campuskit/roombook/store/file"
	"github.com/campuskit/roombook/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the environment.
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dataDir := flag.String("data", cfg.DataDir, "data directory")
	backend := flag.String("store", cfg.Store, "store backend: file or sqlite")
	flag.Parse()
	cfg.Port, cfg.DataDir, cfg.Store = *port, *dataDir, *backend
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Store backend.
	var (
		store  booking.Store
		closer io.Closer
	)
	switch cfg.Store {
	case "sqlite":
		s, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		store, closer = s, s
	default:
		s, err := filestore.New(cfg.DataDir)
		if err != nil {
			log.Fatalf("Failed to open file store: %v", err)
		}
		store = s
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx := context.Background()

	// Catalog is loaded once and read-only for the run.
	catalog, err := booking.LoadCatalog(ctx, store)
	if err != nil {
		log.Fatalf("Failed to load room catalog: %v", err)
	}
	log.Printf("Loaded %d rooms", catalog.Len())

	// Confirmation notifiers: outbox always, AMQP when configured.
	outbox, err := notify.NewOutbox(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to create outbox: %v", err)
	}
	notifiers := notify.Multi{outbox}
	if cfg.AMQPURL != "" {
		pub, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			// Confirmations are best-effort; a dead broker must not stop the server.
			log.Printf("Warning: AMQP publisher disabled: %v", err)
		} else {
			defer pub.Close()
			notifiers = append(notifiers, pub)
		}
	}

	engine := booking.NewEngine(store, catalog,
		booking.WithRules(booking.Rules{
			DailyCapHours:   cfg.DailyCapHours,
			CancelCutoffMin: cfg.CancelCutoffMin,
		}),
		booking.WithNotifier(notifiers),
	)
	query := booking.NewQuery(store, catalog)
	audit := filestore.NewAuditLog(cfg.DataDir)

	handler := api.NewHandler(engine, query, audit)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d (store: %s)", cfg.Port, cfg.Store)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
