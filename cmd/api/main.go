package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/dedup"
	"storefront/internal/handler"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/shipping"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize provider clients
	shippingClient := shipping.NewClient(cfg.MelhorEnvio, cfg.Sender, cfg.Pickup, logger)
	paymentClient := payment.NewClient(cfg.MercadoPago, cfg.Site, logger)

	// Initialize webhook dedup store with Redis and in-memory fallback
	var seen dedup.Store
	if cfg.Redis.Enabled {
		redisStore, err := dedup.NewRedisStore(ctx, cfg.Redis.Addr, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise Redis dedup store, falling back to in-memory store")
			seen = dedup.NewMemoryStore()
		} else {
			seen = redisStore
		}
	} else {
		seen = dedup.NewMemoryStore()
		logger.Info().Msg("using in-memory webhook dedup store (Redis disabled)")
	}
	defer seen.Close()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, productRepo, shippingClient, paymentClient, cfg.Sender.PostalCode, logger)
	fulfillmentService := service.NewFulfillmentService(orderRepo, shippingClient, logger)
	webhookService := service.NewWebhookService(orderRepo, paymentClient, seen, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Product:     handler.NewProductHandler(productService, logger),
		Checkout:    handler.NewCheckoutHandler(checkoutService, logger),
		Fulfillment: handler.NewFulfillmentHandler(fulfillmentService, logger),
		Webhook:     handler.NewWebhookHandler(webhookService, logger),
	}

	// Initialize router
	mux := router.New(handlers, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
