package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokengate/internal/abi"
	"tokengate/internal/api"
	"tokengate/internal/config"
	"tokengate/internal/custody"
	"tokengate/internal/custody/retry"
	"tokengate/internal/directory"
	"tokengate/internal/orchestrator"
	"tokengate/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load configuration
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Configure logger
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Configuration loaded",
		"custody_api", cfg.CustodyAPIURL,
		"token_contract", cfg.TokenContractAddress,
		"directory_contract", cfg.DirectoryContractAddress,
		"log_level", cfg.LogLevel,
	)

	// 3. Initialize the ledger store
	ctx := context.Background()
	repository, err := storage.NewPostgresRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repository.Close()
	slog.Info("Ledger store connected")

	// 4. Load contract interfaces
	token, err := abi.Load("token")
	if err != nil {
		log.Fatalf("Failed to load token contract ABI: %v", err)
	}
	dir, err := abi.Load("directory")
	if err != nil {
		log.Fatalf("Failed to load directory contract ABI: %v", err)
	}

	// 5. Create the custody gateway client
	readRetry := retry.NewStrategy(retry.LoadConfig())
	gateway := custody.NewClient(cfg.CustodyAPIURL, cfg.CustodyAPIKey, cfg.CustodyTimeout, readRetry)

	// 6. Wire the resolver and orchestrator
	resolver := directory.NewResolver(dir, cfg.DirectoryContractAddress, gateway)
	orch := orchestrator.New(gateway, repository, resolver, token, orchestrator.Config{
		TokenContractAddress: cfg.TokenContractAddress,
		TokenAssetID:         cfg.TokenAssetID,
		UnderlyingAssetID:    cfg.UnderlyingAssetID,
		SettleTimeout:        cfg.SettleTimeout,
	})

	// 7. Start the API server
	server := api.NewServer(cfg.Port, orch, repository)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "port", cfg.Port)
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt or error
	select {
	case <-sigChan:
		slog.Warn("Interrupt received, shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error stopping API server", "error", err)
		}
	case err := <-errChan:
		slog.Error("API server error", "error", err)
		os.Exit(1)
	}

	slog.Info("tokengate stopped")
}
