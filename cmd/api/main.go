package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eklart/internal/config"
	"eklart/internal/database"
	"eklart/internal/handler"
	"eklart/internal/promo"
	"eklart/internal/repository"
	"eklart/internal/router"
	"eklart/internal/service"
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
	logger.Info().Msg("starting eklart API server")

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
	articleRepo := repository.NewArticleRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	buyerRepo := repository.NewBuyerRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize the promo code validator. Without configured code files
	// every promo code is rejected and checkout charges full shipping.
	var validator promo.Validator
	if cfg.Promo.Enabled() {
		fileLoader := promo.NewFileLoader(logger)
		var loader promo.Loader = fileLoader

		if cfg.Promo.S3Enabled {
			s3Loader, err := promo.NewS3Loader(ctx, cfg.Promo.S3Bucket, cfg.Promo.S3Region, logger)
			if err != nil {
				logger.Warn().
					Err(err).
					Msg("failed to initialise S3 loader, falling back to local file system only")
			} else {
				loader = promo.NewFallbackLoader(s3Loader, fileLoader, cfg.Promo.S3Prefix, true, logger)
			}
		}

		validator, err = promo.NewValidator(ctx, &promo.ValidatorConfig{FilePaths: cfg.Promo.FilePaths}, loader, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize promo validator: %w", err)
		}
	} else {
		logger.Info().Msg("no promo code files configured, promo codes disabled")
		validator = promo.NewDisabledValidator()
	}
	defer validator.Close()

	// Initialize services
	catalogService := service.NewCatalogService(articleRepo, logger)
	cartService := service.NewCartService(cartRepo, articleRepo, logger)
	checkoutService := service.NewCheckoutService(
		orderRepo, cartRepo, articleRepo, buyerRepo,
		validator, cfg.Checkout.ShippingFee, logger,
	)

	// Initialize HTTP handlers
	articleHandler := handler.NewArticleHandler(catalogService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(checkoutService, logger)

	// Initialize router
	mux := router.New(articleHandler, cartHandler, orderHandler, cfg.Auth.JWTSecret, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
