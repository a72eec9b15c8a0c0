/*
Package main is the entry point for the Kinbrio server.

It loads configuration, initializes the global logging system, opens the database, object
store and session revocation store, starts the notification worker and the live feed hub,
serves HTTP, and shuts everything down in order on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kinbrio/internal/app/db"
	"kinbrio/internal/app/live"
	"kinbrio/internal/app/notify"
	"kinbrio/internal/app/service"
	"kinbrio/internal/app/storage"
	"kinbrio/internal/configs"
	"kinbrio/internal/handler"
	"kinbrio/internal/pkg/auth/jwt"
	"kinbrio/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("matrix_home_server", cfg.MatrixHomeServer).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to open database")
	}
	defer pool.Close()
	store := db.NewStore(pool)

	files, err := storage.NewStorageService(ctx, storage.ServiceConfig{
		S3Endpoint:        cfg.S3Endpoint,
		S3Region:          cfg.S3Region,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize file storage")
	}

	var revoker jwt.Revoker = jwt.NopRevoker{}
	if cfg.RedisURL != "" {
		redisRevoker, err := jwt.NewRedisRevoker(ctx, cfg.RedisURL)
		if err != nil {
			logx.Fatal(err, "Failed to connect to session revocation store")
		}
		defer redisRevoker.Close()
		revoker = redisRevoker
	} else {
		logx.Warn("REDIS_URL not set; signed-out sessions stay valid until they expire")
	}
	sessions := jwt.NewManager(cfg.JWTSecret, cfg.SessionTTL, revoker)

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	matrix := notify.NewMatrixClient(httpClient, cfg.MatrixHomeServer, cfg.MatrixDeviceID)

	hub := live.NewHub()

	worker := notify.NewWorker(store, notify.NewFanout(store, matrix), hub, notify.WorkerConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxAttempts:  cfg.OutboxMaxAttempts,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	svc := service.New(store, files, matrix, service.Config{
		BaseURL:                cfg.PublicBaseURL,
		DefaultAkauntingDomain: cfg.AkauntingDefaultDomain,
		HTTPClient:             httpClient,
	})

	// Setup HTTP server and routes
	router := handler.Router(ctx, &handler.AppDeps{
		Config:   cfg,
		Service:  svc,
		Sessions: sessions,
		Hub:      hub,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Kinbrio server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	hub.Shutdown()
	<-workerDone

	logx.Info("Server gracefully stopped.")
}
