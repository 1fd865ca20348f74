package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/config"
	httpserver "github.com/campuseats/ordering/internal/interfaces/http"
	"github.com/campuseats/ordering/internal/pricing"
	"github.com/campuseats/ordering/internal/repository"
	"github.com/campuseats/ordering/internal/service"
	"github.com/campuseats/ordering/internal/worker"
	"github.com/campuseats/ordering/pkg/database"
	"github.com/campuseats/ordering/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting ordering service")

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	orderRepo := repository.NewOrderRepository(db.DB, logger)
	vendorRepo := repository.NewVendorRepository(db.DB, logger)
	cartRepo := repository.NewCartRepository(db.DB, logger)

	calc := pricing.NewCalculator(pricing.PlatformFeeConfig{
		Rate:    cfg.Pricing.PlatformFeeRate,
		Minimum: cfg.Pricing.PlatformFeeMinimum,
	})

	approvalService := service.NewApprovalService(orderRepo, vendorRepo, cartRepo, db, calc, logger)
	cartService := service.NewCartService(cartRepo, vendorRepo, db, calc, logger)
	vendorService := service.NewVendorService(vendorRepo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := worker.NewManager(logger)
	if cfg.Approval.PendingTTL > 0 {
		manager.Register(worker.NewExpiryWorker(
			orderRepo,
			approvalService,
			cfg.Approval.PendingTTL,
			cfg.Approval.ExpiryScanInterval,
			logger,
		))
	}
	if err := manager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, approvalService, cartService, vendorService, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	manager.StopAll()

	logger.Info("Ordering service stopped")
}
