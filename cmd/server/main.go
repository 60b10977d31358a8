package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/cuenta/internal/app"
	"github.com/Lixing-Zhang/cuenta/internal/config"
	"github.com/Lixing-Zhang/cuenta/internal/geocode"
	"github.com/Lixing-Zhang/cuenta/internal/handlers"
	"github.com/Lixing-Zhang/cuenta/internal/middleware"
	"github.com/Lixing-Zhang/cuenta/internal/optimizer"
	"github.com/Lixing-Zhang/cuenta/internal/service"
	"github.com/Lixing-Zhang/cuenta/pkg/logger"
)

func main() {
	// Load configuration from file and environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting cuenta api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"product_source", cfg.Products.Source,
		"store_source", cfg.Stores.Source,
	)

	// Initialize data sources
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Minute)
	sources, err := app.Open(startupCtx, cfg, log)
	if err != nil {
		cancelStartup()
		log.Error("failed to open data sources", "error", err)
		os.Exit(1)
	}
	defer sources.Close()

	// Initialize services
	geocoder := geocode.NewClient(cfg.Geocoder.URL, cfg.Geocoder.UserAgent,
		time.Duration(cfg.Geocoder.Timeout)*time.Second, log.With("component", "geocode"))

	storeService, err := service.LoadStoreService(startupCtx, sources.Stores, geocoder)
	cancelStartup()
	if err != nil {
		log.Error("failed to load store table", "error", err)
		os.Exit(1)
	}
	log.Info("store table loaded", "stores", storeService.Len(), "chains", storeService.CountByChain())

	catalogService := service.NewCatalogService(sources.Products)

	var opt service.Optimizer
	if cfg.Optimizer.URL != "" {
		opt = optimizer.NewClient(cfg.Optimizer.URL, time.Duration(cfg.Optimizer.Timeout)*time.Second)
	} else {
		log.Warn("OPTIMIZER_URL not set, basket optimization disabled")
	}
	optimizeService := service.NewOptimizeService(opt)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log, func() map[string]int {
		return map[string]int{"stores": storeService.Len()}
	})
	productHandler := handlers.NewProductHandler(catalogService, log)
	storeHandler := handlers.NewStoreHandler(storeService, log)
	optimizeHandler := handlers.NewOptimizeHandler(optimizeService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Product endpoints
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/categories", productHandler.ListCategories)
		r.Get("/products/{productId}", productHandler.GetProduct)

		// Store endpoints
		r.Get("/stores", storeHandler.ListStores)
		r.Get("/stores/chains", storeHandler.ListChains)
		r.Get("/stores/nearby", storeHandler.Nearby)
		r.Get("/stores/zip", storeHandler.Zip)

		// Basket optimization proxies to an external solver and requires an API key
		r.With(middleware.APIKeyAuth(cfg.Auth)).Post("/optimize", optimizeHandler.Optimize)
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
