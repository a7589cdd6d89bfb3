package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "rentool-backend/internal/api/http"
	"rentool-backend/internal/config"
	"rentool-backend/internal/logger"
	"rentool-backend/internal/repository/postgres"
	"rentool-backend/internal/security"
	"rentool-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentool Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	rentalSvc := service.NewRentalService(
		store,
		store.RentalRepository,
		store.ToolRepository,
		store.CustomerRepository,
	)
	toolSvc := service.NewToolService(store.ToolRepository)

	// Initialize Security (auth disabled when no secret is configured)
	var tokenManager security.TokenManager
	if cfg.JWT.Secret != "" {
		tokenManager = security.NewTokenManager(cfg.JWT.Secret)
	} else {
		logger.Warn("JWT secret not configured, auth middleware disabled")
	}

	// Initialize HTTP handlers
	rentalHandler := httpapi.NewRentalHandler(rentalSvc)
	toolHandler := httpapi.NewToolHandler(toolSvc)
	router := httpapi.NewRouter(rentalHandler, toolHandler, tokenManager)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server failed", "error", err)
		log.Fatalf("HTTP server failed: %v", err)
	}
}
