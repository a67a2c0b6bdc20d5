package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"arbitrage-shift-tracker/config"
	"arbitrage-shift-tracker/internal/api"
	"arbitrage-shift-tracker/internal/auth"
	"arbitrage-shift-tracker/internal/cache"
	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/events"
	"arbitrage-shift-tracker/internal/ingest"
	"arbitrage-shift-tracker/internal/logging"
	"arbitrage-shift-tracker/internal/parser"
	"arbitrage-shift-tracker/internal/platform"
	"arbitrage-shift-tracker/internal/profit"
	"arbitrage-shift-tracker/internal/reports"
	"arbitrage-shift-tracker/internal/vault"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(&logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
		Component:  "main",
	})
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Application secrets come from Vault when it is enabled, otherwise from
	// the local configuration
	vaultClient, err := vault.NewClient(cfg.VaultConfig)
	if err != nil {
		logger.Fatal("Failed to create Vault client", "error", err)
	}
	secrets, err := vaultClient.LoadAppSecrets(ctx, vault.AppSecrets{
		JWTSecret:   cfg.AuthConfig.JWTSecret,
		AdminSecret: cfg.AuthConfig.AdminSecret,
	})
	if err != nil {
		logger.Fatal("Failed to load application secrets", "error", err)
	}
	if cfg.AuthConfig.Enabled && secrets.JWTSecret == "" {
		logger.Fatal("JWT secret is required when auth is enabled")
	}

	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	repo := database.NewRepository(db)

	var cacheSvc *cache.Service
	if cfg.RedisConfig.Enabled {
		cacheSvc, err = cache.NewService(cfg.RedisConfig)
		if err != nil {
			logger.Warn("Cache disabled", "error", err)
			cacheSvc = nil
		} else {
			defer cacheSvc.Close()
		}
	}

	eventBus := events.NewEventBus()

	limits := profit.Limits{
		MaxBalanceDelta: cfg.ProfitConfig.MaxBalanceDelta,
		MaxGross:        cfg.ProfitConfig.MaxGrossProfit,
	}
	reportSvc := reports.New(repo, cacheSvc, limits, cfg.SalaryConfig.BasePercent)

	tz := platform.NewNormalizer(cfg.PlatformConfig.TimezoneOffsets)
	ingestSvc := ingest.New(
		parser.New(cfg.UploadConfig.MaxHeaderScan),
		tz,
		ingest.NewPGStore(repo),
		reportSvc,
	)

	jwtManager := auth.NewJWTManager(secrets.JWTSecret, cfg.AuthConfig.AccessTokenDuration)
	passwords := auth.NewPasswordManager(auth.DefaultBcryptCost, cfg.AuthConfig.MinPasswordLength)
	authService := auth.NewService(repo, jwtManager, passwords, secrets.AdminSecret)

	server := api.NewServer(
		cfg.ServerConfig,
		cfg.UploadConfig,
		repo,
		reportSvc,
		ingestSvc,
		authService,
		jwtManager,
		cfg.AuthConfig.Enabled,
		cacheSvc,
		eventBus,
	)

	logger.Info("Shift tracker starting",
		"port", cfg.ServerConfig.Port,
		"auth_enabled", cfg.AuthConfig.Enabled,
		"redis_enabled", cacheSvc != nil)

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server stopped with error", "error", err)
	}
	logger.Info("Shutdown complete")
}
