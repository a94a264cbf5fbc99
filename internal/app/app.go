// Package app assembles the command pipeline shared by the gRPC server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-assistant-service/config"
	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/broker"
	"github.com/fekuna/omnipos-assistant-service/internal/chart"
	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	custRepoPkg "github.com/fekuna/omnipos-assistant-service/internal/customer/repository"
	"github.com/fekuna/omnipos-assistant-service/internal/database"
	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/fekuna/omnipos-assistant-service/internal/inventory"
	invRepoPkg "github.com/fekuna/omnipos-assistant-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-assistant-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/mailer"
	"github.com/fekuna/omnipos-assistant-service/internal/order"
	"github.com/fekuna/omnipos-assistant-service/internal/order/publisher"
	orderRepoPkg "github.com/fekuna/omnipos-assistant-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-assistant-service/internal/order/usecase"
	"github.com/fekuna/omnipos-assistant-service/internal/platform/timeouts"
	"github.com/fekuna/omnipos-assistant-service/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-assistant-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-assistant-service/internal/product/usecase"
	reportUCPkg "github.com/fekuna/omnipos-assistant-service/internal/report/usecase"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type App struct {
	Config     *config.Config
	Logger     logger.ZapLogger
	DB         *sqlx.DB
	Products   product.UseCase
	Inventory  inventory.UseCase
	Orders     order.UseCase
	Dispatcher *chat.Dispatcher

	closers []func() error
}

// NewLogger follows the environment: console and debug in development, JSON otherwise.
func NewLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}
	return logger.NewZapLogger(logConfig)
}

func New(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	log.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	cache, err := a.newCache(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	t := timeouts.Config{
		Command: cfg.Timeouts.Command,
		Storage: cfg.Timeouts.Storage,
		Render:  cfg.Timeouts.Render,
		Mail:    cfg.Timeouts.Mail,
	}.Defaults()

	prodRepo := prodRepoPkg.NewSQLRepository(db)
	invRepo := invRepoPkg.NewSQLRepository(db)
	custRepo := custRepoPkg.NewSQLRepository(db)
	orderRepo := orderRepoPkg.NewSQLRepository(db)

	a.Products = prodUCPkg.NewProductUseCase(prodRepo, invRepo, t.Storage, log)
	a.Inventory = invUCPkg.NewInventoryUseCase(invRepo, prodRepo, cache, t.Storage, log)
	a.Orders = orderUCPkg.NewOrderUseCase(orderRepo, prodRepo, custRepo, cache, a.newPublisher(), t.Storage, log)

	d := chat.NewDispatcher(log, chat.WithTimeout(t.Command))
	d.Register(prodUCPkg.NewAgent(a.Products, log), intent.AddProduct, intent.EditInventory)
	d.Register(orderUCPkg.NewAgent(a.Orders, log), intent.CreateSale, intent.SalesAnalysis)
	d.Register(invUCPkg.NewAgent(a.Inventory, log), intent.ListInventory, intent.InventoryAnalysis)
	d.Register(reportUCPkg.NewAgent(cache, a.Inventory, a.Orders, chart.NewJSONRenderer(), mailer.New(&cfg.SMTP), t, log), intent.Email)
	d.Register(chat.Help{}, intent.Help)
	a.Dispatcher = d

	return a, nil
}

func (a *App) newCache(ctx context.Context) (analysis.Cache, error) {
	cfg := a.Config
	switch cfg.Cache.Backend {
	case "", CacheMemory:
		return analysis.NewMemoryCache(cfg.Cache.TTL), nil
	case CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.Logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		return analysis.NewRedisCache(client, cfg.Cache.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported analysis cache backend %q", cfg.Cache.Backend)
	}
}

func (a *App) newPublisher() publisher.Publisher {
	cfg := a.Config.Kafka
	if !cfg.Enabled {
		return publisher.Noop{}
	}
	producer := broker.NewProducer(&broker.Config{Brokers: cfg.Brokers, Topic: cfg.OrdersTopic})
	a.closers = append(a.closers, producer.Close)
	a.Logger.Info("Publishing order events", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.OrdersTopic))
	return publisher.NewKafkaPublisher(producer)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
