/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Arc portal server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (and optional YAML config)
  2. Open the SQLite persistence gateway
  3. Hydrate the portal session from storage (or seed data)
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr    HTTP listen address (default: :8080)
  -db      SQLite database path (default: portal.db)
           Use ":memory:" for an in-memory database
  -config  Optional YAML config file; flags override its fields

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - portal/session.go: The state container
  - store/sqlite/sqlite.go: Persistence gateway
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arc/portal-engine/api"
	"github.com/arc/portal-engine/config"
	"github.com/arc/portal-engine/portal"
	"github.com/arc/portal-engine/seed"
	"github.com/arc/portal-engine/store/sqlite"
)

func main() {
	// Flags
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}

	// Persistence gateway
	gateway, err := sqlite.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer gateway.Close()

	// Hydrate the session from storage, falling back to seed data
	session := portal.NewSession(context.Background(), gateway, seed.Invoices())

	// Handler and router
	handler := api.NewHandler(session, seed.Projects(), seed.InvoiceStatuses())
	router := api.NewRouter(handler, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Portal server listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
