package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fentz26/focus/internal/api"
	"github.com/fentz26/focus/internal/audit"
	"github.com/fentz26/focus/internal/recompute"
	"github.com/fentz26/focus/internal/store"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	dbPath     string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the focus daemon",
	Long:  `Starts the focus daemon which owns the task database and serves the HTTP API.`,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (default from config)")
	daemonCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (default from config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log.Println("Starting focus daemon...")

	if listenAddr == "" {
		listenAddr = cfg.Daemon.Listen
	}
	if dbPath == "" {
		dbPath = cfg.Daemon.DB
	}

	// Initialize store
	s, err := store.New(dbPath)
	if err != nil {
		return err
	}

	journal := audit.NewJournal(s)

	// Badge counts are recomputed in the background after every mutation
	coord := recompute.New(s, &cfg.Recompute)
	coord.Start()
	coord.Request()

	service := api.NewService(s, journal, coord)
	server := api.NewServer(service, listenAddr)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		err := server.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			coord.Stop()
			s.Close()
			return err
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	coord.Stop()

	log.Println("Closing database connection...")
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}
