package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"research-assistant/internal/config"
	"research-assistant/internal/handler"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Wiring
	container, err := config.NewContainer(context.Background())
	if err != nil {
		log.Printf("Startup failed: %v", err)
		os.Exit(1)
	}
	if s, ok := container.Logger.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	cfg := container.Config
	workspace := container.WorkspaceService

	// Handlers
	uiHandler := handler.NewUIHandler(workspace, cfg.GetMaxFileSize(), container.Logger)
	apiHandler := handler.NewAPIHandler(workspace, cfg.GetMaxFileSize(), container.Logger)

	sessionMiddleware := handler.NewSessionMiddleware(workspace, cfg.GetSessionTTL(), container.Logger)
	loggingMiddleware := handler.NewLoggingMiddleware(container.Logger)

	// Router
	router := handler.NewRouter(
		uiHandler,
		apiHandler,
		sessionMiddleware.Middleware,
		loggingMiddleware.Middleware,
		container.Metrics.Handler(),
		cfg.GetCORSAllowedOrigins(),
	)

	// start server
	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
}
