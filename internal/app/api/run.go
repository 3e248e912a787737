package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	orderworkflows "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/workflows"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	platformmetrics "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/metrics"
	platformobservability "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/observability"
	platformpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/postgres"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/server"
)

const serviceName = "shop-api"

// Version is stamped at build time with -ldflags "-X .../internal/app/api.Version=...".
var Version = "dev"

// Run boots the shop HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	startedAt := time.Now()
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	services, cleanup, err := BuildServices(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	orderWorkflows, closeWorkflows := SelectOrderWorkflows(services, func() (client.Client, error) {
		return ConnectTemporalClient(cfg, instruments, "temporal-client")
	}, logger)
	defer closeWorkflows()

	handlers := server.ApiHandleFunctions{
		OrderAPI:   server.NewOrderAPI(services.Orders, orderWorkflows),
		ProductAPI: server.NewProductAPI(services.Products),
		UserAPI:    server.NewUserAPI(services.Users),
		HealthAPI: server.NewHealthAPI(databasePinger(services.DB),
			server.WithApplication(serviceName, Version, cfg.Environment),
			server.WithStartTime(startedAt),
		),
	}
	router := NewEngine(cfg, handlers, platformmetrics.NewServerMetrics("api", nil))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("shop API listening", slog.String("addr", srv.Addr), slog.String("environment", cfg.Environment))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("shop API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		logger.Info("shutting down shop API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// SelectOrderWorkflows places orders through Temporal only when they are
// stored in a shared database. The worker runs in its own process, so with
// in-memory repositories it would never see the API's users, products or
// orders; those deployments place orders inline.
func SelectOrderWorkflows(services *Services, connect func() (client.Client, error), logger *slog.Logger) (orderports.WorkflowOrchestrator, func()) {
	inline := orderworkflows.NewInlineOrderWorkflows(services.Orders)
	if services.DB == nil {
		logger.Info("placing orders inline: Temporal workflows need a shared database (set POSTGRES_DSN)")
		return inline, func() {}
	}
	temporalClient, err := connect()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled")
	return orderworkflows.NewTemporalOrderWorkflows(temporalClient), temporalClient.Close
}

// NewEngine builds the gin engine with middleware installed ahead of the routes.
func NewEngine(cfg Config, handlers server.ApiHandleFunctions, serverMetrics *platformmetrics.ServerMetrics) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	if serverMetrics != nil {
		router.Use(serverMetrics.Middleware())
		router.GET("/metrics", gin.WrapH(serverMetrics.Handler()))
	}
	return server.NewRouterWithGinEngine(router, handlers)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}

func databasePinger(db *gorm.DB) server.Pinger {
	if db == nil {
		return nil
	}
	return server.PingerFunc(func(ctx context.Context) error {
		return platformpostgres.Ping(ctx, db)
	})
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
