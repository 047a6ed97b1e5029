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

	"golang-stock-tracker/internal/tracker/config"
	delivery "golang-stock-tracker/internal/tracker/delivery/http"
	_ "golang-stock-tracker/internal/tracker/docs"
	"golang-stock-tracker/internal/tracker/repository"
	"golang-stock-tracker/internal/tracker/service"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/postgres"
	"golang-stock-tracker/pkg/redis"
	"golang-stock-tracker/pkg/sqlite"
	"golang-stock-tracker/pkg/telegram"
	"golang-stock-tracker/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the position tracker service",
	Run:   runServe,
}

// backend bundles the storage collaborators chosen by configuration.
type backend struct {
	storage repository.StorageRepository
	prices  repository.PriceRepository
	closers []func() error
}

func (b *backend) Close() {
	for _, c := range b.closers {
		_ = c()
	}
}

func newBackend(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*backend, error) {
	b := &backend{}

	// A redis client is opened only when some component stores data in it.
	var redisClient *redis.Client
	if cfg.Storage.Driver == config.DriverRedis || cfg.Alert.Enabled {
		client, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
		redisClient = client
		b.closers = append(b.closers, client.Close)
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		b.storage = repository.NewMemoryRepository(cfg.Storage.MaxBytes)
	case config.DriverFile:
		b.storage = repository.NewFileRepository(cfg.Storage.FilePath, cfg.Storage.MaxBytes, appLogger)
	case config.DriverRedis:
		b.storage = repository.NewRedisRepository(redisClient, cfg.SessionTTL(), cfg.Storage.MaxBytes, appLogger)
	case config.DriverPostgres:
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("initialize database: %w", err)
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			b.closers = append(b.closers, sqlDB.Close)
		}
		b.storage = repository.NewGormRepository(db.DB, cfg.Storage.MaxBytes, appLogger)
	case config.DriverSQLite:
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			DSN:         cfg.SQLite.DSN,
			JournalMode: cfg.SQLite.JournalMode,
			BusyTimeout: cfg.SQLiteBusyTimeout(),
			LogLevel:    cfg.SQLite.LogLevel,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			b.closers = append(b.closers, sqlDB.Close)
		}
		if err := repository.Migrate(ctx, db); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		b.storage = repository.NewGormRepository(db, cfg.Storage.MaxBytes, appLogger)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if redisClient != nil {
		b.prices = repository.NewRedisPriceRepository(redisClient, cfg.PriceTTL())
	} else {
		b.prices = repository.NewMemoryPriceRepository(cfg.PriceTTL())
	}

	return b, nil
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Tracker Service",
		logger.Field("name", cfg.App.Name),
		logger.StringField("storage", cfg.Storage.Driver),
	)

	store, err := newBackend(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", logger.ErrorField(err))
	}
	defer store.Close()

	// Initialize services
	calcSvc := service.NewCalculationService(utils.TimeNow)
	validationSvc := service.NewValidationService()
	positionSvc := service.NewPositionService(store.storage, calcSvc, validationSvc, appLogger)

	if cfg.Alert.Enabled {
		var notifier telegram.Notifier
		if cfg.Telegram.Enabled {
			notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxMessagesPerMinute)
			if err != nil {
				appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
			}
		}
		alertSvc := service.NewAlertService(positionSvc, store.prices, calcSvc, notifier, service.AlertOptions{
			CronExpression: cfg.Alert.CronExpression,
			CacheDuration:  cfg.AlertCacheDuration(),
		}, appLogger)
		if err := alertSvc.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start alert scheduler", logger.ErrorField(err))
		}
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(delivery.RequestContext())

	apiV1 := e.Group("/api/v1")
	delivery.NewPositionHandler(positionSvc, appLogger).RegisterRoutes(apiV1.Group("/positions"))
	delivery.NewPortfolioHandler(positionSvc, validationSvc, store.prices, appLogger).RegisterRoutes(apiV1)

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Sell-in-Thirds Position Tracker API
// @version 1.0
// @description Tracks stock positions sold in thirds at +50% and +100% with a trailing stop-loss.
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "tracker-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-tracker.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing tracker-service CLI: %s\n", err)
		os.Exit(1)
	}
}
