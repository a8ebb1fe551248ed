package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-signal-settler/internal/settlement/config"
	delivery "golang-signal-settler/internal/settlement/delivery/http"
	"golang-signal-settler/internal/settlement/repository"
	"golang-signal-settler/internal/settlement/service"
	"golang-signal-settler/pkg/logger"
	"golang-signal-settler/pkg/postgres"
	"golang-signal-settler/pkg/push"
	redisPkg "golang-signal-settler/pkg/redis"
	"golang-signal-settler/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the settlement service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Settlement Service", logger.StringField("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis. The service only uses it for last-price
	// observability, so a missing Redis degrades rather than aborts.
	var redisClient *redisPkg.Client
	if cfg.Redis.Host != "" {
		redisClient, err = redisPkg.NewClient(redisPkg.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Warn("Redis unavailable, last-price tracking disabled", logger.ErrorField(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize repositories
	signalRepo := repository.NewSignalRepository(db.DB)
	historyRepo := repository.NewSettlementHistoryRepository(db.DB)
	quoteRepo := repository.NewFinnhubRepository(cfg, appLogger)

	// Initialize push notifier
	var pushNotifier push.Notifier
	if cfg.Firebase.ServiceAccountJSON != "" {
		pushNotifier, err = push.NewFCMClient(ctx, cfg.Firebase.ServiceAccountJSON)
		if err != nil {
			appLogger.Fatal("Failed to initialize FCM client", logger.ErrorField(err))
		}
	} else {
		appLogger.Warn("No Firebase service account configured, push notifications disabled")
	}

	// Initialize ops notifier
	var opsNotifier telegram.Notifier
	if cfg.Telegram.Enabled {
		opsNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	settlementSvc := service.NewSettlementService(cfg, appLogger, signalRepo, historyRepo, quoteRepo, pushNotifier, opsNotifier, redisClient)

	// Schedule recurring cycles
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Scheduler.CronExpression, func() {
		if _, err := settlementSvc.RunCycle(ctx); err != nil {
			appLogger.Error("Scheduled settlement cycle failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		appLogger.Fatal("Invalid cron expression", logger.ErrorField(err), logger.StringField("cron_expression", cfg.Scheduler.CronExpression))
	}
	scheduler.Start()

	appLogger.Info("Settlement cycles scheduled", logger.StringField("cron_expression", cfg.Scheduler.CronExpression))

	// One immediate cycle so a fresh deploy can be verified without
	// waiting for the first tick.
	if !cfg.Scheduler.SkipInitialRun {
		go func() {
			if _, err := settlementSvc.RunCycle(ctx); err != nil {
				appLogger.Error("Initial settlement cycle failed", logger.ErrorField(err))
			}
		}()
	}

	// Initialize Echo server for the ops surface
	e := echo.New()
	e.HideBanner = true

	settlementHandler := delivery.NewSettlementHandler(settlementSvc, appLogger)
	settlementHandler.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down settlement service...")

	// Let an in-flight cycle finish before exiting.
	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Settlement service stopped")
}

func main() {
	rootCmd := &cobra.Command{Use: "settlement-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-settlement.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing settlement-service CLI: %s\n", err)
		os.Exit(1)
	}
}
