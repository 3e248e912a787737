package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	catalogmemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/application"
	catalogports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
	orderdirectory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/directory"
	ordermemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/memory"
	ordermessaging "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/messaging"
	orderobs "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/application"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	usercrypto "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/adapters/crypto"
	usermemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/adapters/memory"
	userobs "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/adapters/observability"
	userpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/application"
	userports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/ports"
	platformkafka "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/kafka"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/migrations"
	platformobservability "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/observability"
	platformpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/postgres"
)

// Services holds the decorated use cases of every bounded context.
type Services struct {
	Users    userports.Service
	Products catalogports.Service
	Orders   orderports.Service
	// DB is nil when the process runs on in-memory repositories.
	DB *gorm.DB
}

type repositories struct {
	users    userports.Repository
	products catalogports.Repository
	orders   orderports.Repository
	tx       orderports.TxManager
}

// BuildServices connects storage, optional Kafka publishing, and the
// observability decorators. The cleanup releases every opened resource.
func BuildServices(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Services, func(), error) {
	if instruments == nil {
		instruments = platformobservability.Noop()
	}
	logger := instruments.Logger

	db, closeDB := platformpostgres.ConnectWithFallback(ctx, cfg.PostgresDSN, logger)
	if db != nil && cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("database schema migrated")
	}
	repos := buildRepositories(db)

	publisher, closePublisher := buildOrderPublisher(cfg, logger)
	cleanup := func() {
		closePublisher()
		closeDB()
	}

	userService := userobs.New(
		userapp.NewService(repos.users, usercrypto.NewArgon2Hasher(usercrypto.DefaultParams)),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	productService := catalogobs.New(
		catalogapp.NewService(repos.products),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)

	orderOpts := []orderapp.Option{
		orderapp.WithStockReservation(cfg.ReserveStock),
		orderapp.WithLookupConcurrency(cfg.LookupConcurrency),
		orderapp.WithEventPublisher(publisher),
		orderapp.WithLogger(logger),
	}
	if repos.tx != nil {
		orderOpts = append(orderOpts, orderapp.WithTxManager(repos.tx))
	}
	orderService := orderobs.New(
		orderapp.NewService(
			repos.orders,
			orderdirectory.NewUsers(repos.users),
			orderdirectory.NewProducts(repos.products),
			orderOpts...,
		),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	return &Services{
		Users:    userService,
		Products: productService,
		Orders:   orderService,
		DB:       db,
	}, cleanup, nil
}

func buildRepositories(db *gorm.DB) repositories {
	if db == nil {
		return repositories{
			users:    usermemory.NewRepository(),
			products: catalogmemory.NewRepository(),
			orders:   ordermemory.NewRepository(),
		}
	}
	// READ COMMITTED is enough: the conditional stock decrement re-checks
	// the row after acquiring its lock.
	return repositories{
		users:    userpostgres.NewRepository(db),
		products: catalogpostgres.NewRepository(db),
		orders:   orderpostgres.NewRepository(db),
		tx:       platformpostgres.NewTxManager(db, platformpostgres.WithIsolation(sql.LevelReadCommitted)),
	}
}

func buildOrderPublisher(cfg Config, logger *slog.Logger) (orderports.EventPublisher, func()) {
	publisher, closeWriter, err := ordermessaging.NewFromClient(platformkafka.NewClient(cfg.KafkaBrokers), cfg.KafkaOrdersTopic)
	if err != nil {
		if !errors.Is(err, platformkafka.ErrDisabled) {
			logger.Warn("kafka publisher unavailable, order events disabled", slog.String("error", err.Error()))
		}
		return orderports.NoopPublisher{}, func() {}
	}
	logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrdersTopic))
	return publisher, func() {
		if err := closeWriter(); err != nil {
			logger.Warn("failed to close kafka writer", slog.String("error", err.Error()))
		}
	}
}
