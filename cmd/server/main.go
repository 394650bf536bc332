package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/opentrack/internal/api"
	"github.com/ignite/opentrack/internal/config"
	"github.com/ignite/opentrack/internal/tracker"

	_ "github.com/mattn/go-sqlite3"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	if err := os.MkdirAll(cfg.Tracking.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %s: %v", cfg.Tracking.DataDir, err)
	}

	dbPath := cfg.Tracking.DBPath()
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", dbPath, err)
	}
	defer db.Close()

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent pixel/click traffic.
	db.SetMaxOpenConns(1)

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := tracker.InitSchema(initCtx, db); err != nil {
		initCancel()
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	initCancel()
	log.Printf("Database ready at %s", dbPath)

	store := tracker.NewStore(db)
	server := api.NewServer(cfg, store)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s (base URL %s)", addr, cfg.Tracking.PublicBaseURL)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
