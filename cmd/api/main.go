package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketmapper/internal"
	"marketmapper/internal/config"
	"marketmapper/internal/container"
	"marketmapper/ui"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := internal.NewDefaultLogger()

	c, err := container.New(cfg, logger)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	app := ui.NewApp(
		c.Orchestrator,
		c.UserRepo,
		c.ProjectRepo,
		c.SessionRepo,
		c.ConversationRepo,
		c.ResultRepo,
		logger,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("[API] listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("[API] shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("[API] shutdown error: %v", err)
	}
}
