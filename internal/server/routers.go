// Package server exposes the shop HTTP API over gin.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every resource.
type ApiHandleFunctions struct {
	OrderAPI   OrderAPI
	ProductAPI ProductAPI
	UserAPI    UserAPI
	HealthAPI  HealthAPI
}

// NewRouter returns a new router with every route registered.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes whose handler was not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"CreateOrder", http.MethodPost, "/api/orders", handleFunctions.OrderAPI.CreateOrder},
		{"ListOrders", http.MethodGet, "/api/orders", handleFunctions.OrderAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/api/orders/:id", handleFunctions.OrderAPI.GetOrder},
		{"UpdateOrderStatus", http.MethodPatch, "/api/orders/:id/status", handleFunctions.OrderAPI.UpdateOrderStatus},
		{"DeleteOrder", http.MethodDelete, "/api/orders/:id", handleFunctions.OrderAPI.DeleteOrder},
		{"ListUserOrders", http.MethodGet, "/api/users/:id/orders", handleFunctions.OrderAPI.ListUserOrders},

		{"CreateProduct", http.MethodPost, "/api/products", handleFunctions.ProductAPI.CreateProduct},
		{"ListProducts", http.MethodGet, "/api/products", handleFunctions.ProductAPI.ListProducts},
		{"GetProduct", http.MethodGet, "/api/products/:id", handleFunctions.ProductAPI.GetProduct},
		{"UpdateProduct", http.MethodPut, "/api/products/:id", handleFunctions.ProductAPI.UpdateProduct},
		{"DeleteProduct", http.MethodDelete, "/api/products/:id", handleFunctions.ProductAPI.DeleteProduct},

		{"CreateUser", http.MethodPost, "/api/users", handleFunctions.UserAPI.CreateUser},
		{"ListUsers", http.MethodGet, "/api/users", handleFunctions.UserAPI.ListUsers},
		{"GetUser", http.MethodGet, "/api/users/:id", handleFunctions.UserAPI.GetUser},
		{"UpdateUser", http.MethodPut, "/api/users/:id", handleFunctions.UserAPI.UpdateUser},
		{"DeleteUser", http.MethodDelete, "/api/users/:id", handleFunctions.UserAPI.DeleteUser},

		{"Health", http.MethodGet, "/health", handleFunctions.HealthAPI.Health},
		{"Ping", http.MethodGet, "/health/ping", handleFunctions.HealthAPI.Ping},
		{"DatabaseHealth", http.MethodGet, "/health/database", handleFunctions.HealthAPI.Database},
		{"DetailedHealth", http.MethodGet, "/health/detailed", handleFunctions.HealthAPI.Detailed},
	}
}
