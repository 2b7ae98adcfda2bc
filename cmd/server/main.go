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

	"github.com/pep299/paper-summarizer/internal/config"
	"github.com/pep299/paper-summarizer/internal/handlers"
	"github.com/robfig/cron/v3"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		fmt.Printf("Paper Summarizer Server\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  HUGGINGFACE_API_TOKEN   Summarization API token (required)\n")
		fmt.Printf("  SESSION_SECRET          Session cookie signing key (required)\n")
		fmt.Printf("  PORT                    Server port (default: 8080)\n")
		fmt.Printf("  HOST                    Server host (default: 0.0.0.0)\n")
		fmt.Printf("  UPLOAD_DIR              Upload directory (default: uploads)\n")
		fmt.Printf("  UPLOAD_BUCKET           GCS bucket for archived uploads (optional)\n")
		fmt.Printf("  SLACK_BOT_TOKEN         Slack bot token for notifications (optional)\n")
		fmt.Printf("  SESSION_SWEEP_SCHEDULE  Cron schedule for expiring sessions (default: @every 10m)\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("Paper Summarizer Server\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create server
	server, err := handlers.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer server.Close()

	// Each upload makes two sequential summarizer calls
	summarizerTimeout := time.Duration(cfg.SummarizerTimeout) * time.Second

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      server.SetupRoutes(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 2*summarizerTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Expire idle sessions on a schedule
	c := cron.New()
	sessions := server.Sessions()
	_, err = c.AddFunc(cfg.SessionSweepSchedule, func() {
		if removed := sessions.Sweep(); removed > 0 {
			stats := sessions.GetStats()
			log.Printf("Session sweep removed %d sessions, %d active", removed, stats.ActiveSessions)
		}
	})
	if err != nil {
		log.Fatalf("Invalid session sweep schedule %q: %v", cfg.SessionSweepSchedule, err)
	}
	log.Printf("Scheduled session sweep with cron: %s", cfg.SessionSweepSchedule)

	c.Start()
	defer c.Stop()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s:%s", cfg.Host, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down server...")

	cancel()
	c.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
