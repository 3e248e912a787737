package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"

	orderworkflows "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/workflows"
	platformmetrics "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/metrics"
	platformpostgres "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/postgres"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/sqlitetest"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/server"
)

func newTestEngine(t *testing.T, cfg Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	services, cleanup, err := BuildServices(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	require.Nil(t, services.DB)

	handlers := server.ApiHandleFunctions{
		OrderAPI:   server.NewOrderAPI(services.Orders, orderworkflows.NewInlineOrderWorkflows(services.Orders)),
		ProductAPI: server.NewProductAPI(services.Products),
		UserAPI:    server.NewUserAPI(services.Users),
		HealthAPI:  server.NewHealthAPI(databasePinger(services.DB)),
	}
	return NewEngine(cfg, handlers, platformmetrics.NewServerMetrics("api", nil))
}

func post(t *testing.T, engine http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func idOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.ID
}

func TestEngine_InMemoryOrderFlowWithReservation(t *testing.T) {
	engine := newTestEngine(t, Config{ReserveStock: true, CORSAllowedOrigins: []string{"*"}})

	user := post(t, engine, "/api/users", map[string]any{"name": "Ana", "email": "ana@example.com", "password": "s3cret"})
	require.Equal(t, http.StatusCreated, user.Code, user.Body.String())
	product := post(t, engine, "/api/products", map[string]any{"name": "Camiseta", "price": "20.00", "stock": 1})
	require.Equal(t, http.StatusCreated, product.Code, product.Body.String())

	order := map[string]any{
		"userId":   idOf(t, user),
		"products": []map[string]any{{"productId": idOf(t, product), "quantity": 1}},
	}
	first := post(t, engine, "/api/orders", order)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := post(t, engine, "/api/orders", order)
	require.Equal(t, http.StatusBadRequest, second.Code, second.Body.String())
	assert.Contains(t, second.Body.String(), server.CodeInsufficientStock)
}

func TestEngine_MetricsAndCORS(t *testing.T) {
	engine := newTestEngine(t, Config{CORSAllowedOrigins: []string{"https://shop.example"}})

	req := httptest.NewRequest(http.MethodGet, "/health/ping", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shop_api_http_requests_total{handler="/health/ping",method="GET",status="200"} 1`)
}

type closeCounter struct {
	client.Client
	closed int
}

func (c *closeCounter) Close() { c.closed++ }

func TestSelectOrderWorkflows(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	services, cleanup, err := BuildServices(context.Background(), Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	t.Run("in-memory stores stay inline without dialing", func(t *testing.T) {
		dialed := false
		workflows, closeFn := SelectOrderWorkflows(services, func() (client.Client, error) {
			dialed = true
			return &closeCounter{}, nil
		}, logger)
		defer closeFn()
		assert.False(t, dialed)
		assert.IsType(t, &orderworkflows.InlineOrderWorkflows{}, workflows)
	})

	shared := *services
	shared.DB = sqlitetest.Open(t)

	t.Run("unreachable Temporal falls back to inline", func(t *testing.T) {
		workflows, closeFn := SelectOrderWorkflows(&shared, func() (client.Client, error) {
			return nil, errors.New("connection refused")
		}, logger)
		defer closeFn()
		assert.IsType(t, &orderworkflows.InlineOrderWorkflows{}, workflows)
	})

	t.Run("shared database uses Temporal", func(t *testing.T) {
		temporalClient := &closeCounter{}
		workflows, closeFn := SelectOrderWorkflows(&shared, func() (client.Client, error) {
			return temporalClient, nil
		}, logger)
		assert.IsType(t, &orderworkflows.TemporalOrderWorkflows{}, workflows)
		closeFn()
		assert.Equal(t, 1, temporalClient.closed)
	})
}

func TestBuildRepositories_DatabaseTransactionsAreReadCommitted(t *testing.T) {
	repos := buildRepositories(sqlitetest.Open(t))
	tx, ok := repos.tx.(*platformpostgres.TxManager)
	require.True(t, ok)
	assert.Equal(t, sql.LevelReadCommitted, tx.Isolation())

	assert.Nil(t, buildRepositories(nil).tx)
}
