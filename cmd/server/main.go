/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift allocation engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Load the award rate table and holiday calendar from YAML
  4. Create API handler with dependencies
  5. Start the escalation scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: shifts.db)
            Use ":memory:" for in-memory database
  -rates    Rate table YAML path (default: config/rates.yaml)
  -escalate Escalation check interval (default: 1m)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the escalation scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/shifts.db"

  # Run with in-memory database and custom rates
  ./server -db=":memory:" -rates="./config/rates.yaml"

SEE ALSO:
  - api/server.go: Router configuration
  - rates/config.go: Rate table loading
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/locumbase/shift-engine/api"
	"github.com/locumbase/shift-engine/rates"
	"github.com/locumbase/shift-engine/shifts"
	"github.com/locumbase/shift-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "shifts.db", "SQLite database path")
	ratesPath := flag.String("rates", "config/rates.yaml", "rate table YAML path")
	escalateEvery := flag.Duration("escalate", time.Minute, "escalation check interval")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Load the award rate table and holiday calendar
	table, holidays, err := rates.Load(*ratesPath)
	if err != nil {
		log.Fatalf("Failed to load rate table: %v", err)
	}
	resolver := rates.NewResolver(table, holidays)

	// Initialize handler
	handler := api.NewHandler(store, resolver, shifts.LogSink{})

	// Start the escalation scheduler
	scheduler := api.NewEscalationScheduler(handler)
	scheduler.CheckInterval = *escalateEvery
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
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
