package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/application"
	orderdirectory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/directory"
	ordermemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/memory"
	orderapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/application"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	usercrypto "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/adapters/crypto"
	usermemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/adapters/memory"
	userapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/application"
)

var testHashParams = usercrypto.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

type testApp struct {
	router *gin.Engine
}

type appOption func(*ApiHandleFunctions)

func withOrderWorkflows(workflows orderports.WorkflowOrchestrator) appOption {
	return func(h *ApiHandleFunctions) { h.OrderAPI.workflows = workflows }
}

func withDatabase(p Pinger) appOption {
	return func(h *ApiHandleFunctions) { h.HealthAPI = NewHealthAPI(p) }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := usermemory.NewRepository()
	productRepo := catalogmemory.NewRepository()
	userService := userapp.NewService(userRepo, usercrypto.NewArgon2Hasher(testHashParams))
	productService := catalogapp.NewService(productRepo)
	orderService := orderapp.NewService(
		ordermemory.NewRepository(),
		orderdirectory.NewUsers(userRepo),
		orderdirectory.NewProducts(productRepo),
	)

	handlers := ApiHandleFunctions{
		OrderAPI:   NewOrderAPI(orderService, nil),
		ProductAPI: NewProductAPI(productService),
		UserAPI:    NewUserAPI(userService),
		HealthAPI:  NewHealthAPI(nil),
	}
	for _, opt := range opts {
		opt(&handlers)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	return &testApp{router: NewRouterWithGinEngine(router, handlers)}
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) createUser(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/users", map[string]any{"name": "Ana", "email": email, "password": "s3cret"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)["id"].(string)
}

func (a *testApp) createProduct(t *testing.T, name, price string, stock int) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/products", map[string]any{"name": name, "description": name, "price": price, "stock": stock})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)["id"].(string)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
