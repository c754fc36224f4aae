package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/vidgest/internal/api"
	"github.com/dgallion1/vidgest/internal/config"
	"github.com/dgallion1/vidgest/internal/llm"
	"github.com/dgallion1/vidgest/internal/pipeline"
	"github.com/dgallion1/vidgest/internal/youtube"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Error("gemini client init failed", "error", err)
		os.Exit(1)
	}
	stats := llm.NewStats(cfg.StatsWindow)
	roster := llm.NewRoster(cfg.Models)
	client := llm.NewFallbackClient(gemini, roster, cfg.QuotaSignals, stats, log)
	yt := youtube.NewClient("")

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(client, log, cfg.MaxChunkSize, cfg.ChunkOverlap)

	// Initialize HTTP server.
	srv := api.NewServer(orch, yt, stats, log, cfg)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     http.TimeoutHandler(srv, cfg.RequestTimeout, `{"error":"request timed out"}`),
		ReadTimeout: 30 * time.Second,
		// Document generation holds the connection for the whole chunk loop.
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting vidgest", "port", cfg.Port, "models", cfg.Models)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
