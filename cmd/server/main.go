// jotsum server entry point. Wires configuration, the directory database,
// the summarizer, auth, rate limiting, and the notes API into one HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jotsum/jotsum/internal/api"
	"github.com/jotsum/jotsum/internal/auth"
	"github.com/jotsum/jotsum/internal/cache"
	"github.com/jotsum/jotsum/internal/config"
	"github.com/jotsum/jotsum/internal/db"
	"github.com/jotsum/jotsum/internal/obs"
	"github.com/jotsum/jotsum/internal/ratelimit"
	"github.com/jotsum/jotsum/internal/summary"
)

func main() {
	noAI, noAuth, addr := config.ParseFlags()
	cfg := config.MustLoadConfig(noAI, noAuth, addr)

	obs.Init()
	log := obs.Pkg("main")
	cfg.PrintStartupSummary()

	db.DataDirectory = cfg.DataDir
	dirDB, err := db.OpenDirectoryDB()
	if err != nil {
		log.Error("failed to open directory database", "error", err)
		os.Exit(1)
	}
	defer db.CloseAll()

	var summarizer summary.Summarizer
	if cfg.NoAI {
		summarizer = summary.NewMockSummarizer()
		log.Info("using mock summarizer")
	} else {
		summarizer = summary.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.SummaryModel)
		log.Info("using OpenAI summarizer", "model", cfg.SummaryModel)
	}

	tokens := auth.NewTokenService(dirDB)
	devUser := ""
	if cfg.NoAuth {
		devUser = auth.DevUserID
		log.Warn("auth disabled, all requests act as dev user", "user_id", devUser)
	}
	authMW := auth.NewMiddleware(tokens, cfg.MasterKey, devUser)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitConfig)
	defer limiter.Stop()

	caches := cache.NewRegistry()
	handler := api.NewHandler(summarizer, caches)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authMW, limiter)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           obs.Middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	log.Info("server stopped")
}
