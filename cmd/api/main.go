package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banortesmart/backend/internal/assistant"
	"banortesmart/backend/internal/config"
	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/logging"
	"banortesmart/backend/internal/server"
	"banortesmart/backend/internal/session"
	"banortesmart/backend/internal/store"
)

func main() {
	cfg := config.Load()
	if err := logging.Init(cfg.LogDebug); err != nil {
		panic(err)
	}
	defer logging.Sync()

	if err := cfg.Validate(); err != nil {
		logging.Fatalw("invalid config", "error", err)
	}

	catalog, err := consumption.Load(cfg.DatasetPath)
	if err != nil {
		logging.Fatalw("dataset load failed", "path", cfg.DatasetPath, "error", err)
	}

	ctx := context.Background()
	messages, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatalw("transcript store open failed", "error", err)
	}
	defer messages.Close()

	sessions, err := session.NewManager(cfg)
	if err != nil {
		logging.Fatalw("session manager init failed", "error", err)
	}

	var generator assistant.Generator
	if cfg.AIEnabled() {
		generator = assistant.NewGeminiClient(cfg)
	} else {
		logging.Infow("GEMINI_API_KEY not set, assistant answers from rules only")
	}
	controller := assistant.NewController(catalog, generator, time.Duration(cfg.AITimeoutSeconds)*time.Second)

	app := server.New(cfg, server.Deps{
		Catalog:      catalog,
		Sessions:     sessions,
		Conversation: assistant.NewConversation(controller, messages),
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Infow("maya api listening", "addr", "http://localhost:"+cfg.AppPort, "env", cfg.AppEnv)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Warnw("graceful shutdown failed", "error", err)
	}
}
