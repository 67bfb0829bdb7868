package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/airline-reservation-system/internal/accounts"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/auth"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/config"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/handlers"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/ledger"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/router"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/service"
	"github.com/cx-tal-miterani/airline-reservation-system/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connect to database
	log.Println("Connecting to database...")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	store := ledger.New(pool)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	users := accounts.NewRepository(pool, 0)
	if err := users.SeedDemoUsers(ctx); err != nil {
		log.Fatalf("Failed to seed demo users: %v", err)
	}
	log.Println("Connected to database")

	// Create Temporal client
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer temporalClient.Close()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Initialize services
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	bookingService := service.NewBookingService(temporalClient, cfg.TaskQueue, store, hub)
	accountService := service.NewAccountService(users, tokens)

	h := handlers.NewHandler(bookingService, accountService)
	r := router.SetupRouter(h, tokens.Middleware, hub.ServeWS)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("API Server starting on port %s", cfg.Port)
		log.Printf("Connected to Temporal server at %s (queue %s)", cfg.TemporalHost, cfg.TaskQueue)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	stop()

	log.Println("Server stopped")
}
