package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	apierrors "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/errors"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

const orderCreatedMessage = "Order created successfully"

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
	problems  *apierrors.ChainedResponder
}

// NewOrderAPI creates an OrderAPI. A nil orchestrator places orders through the service directly.
func NewOrderAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows, problems: newOrderResponder()}
}

// Post /api/orders
// Create an order from a user and a list of product lines
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload orderhttpmapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.problems.Respond(c, problemInvalidOrder.WithDetail("request body must be a JSON object").WithCode(CodeInvalidRequest))
		return
	}
	input := orderhttpmapper.ToCreateInput(payload)
	var (
		order *orderdomain.Order
		err   error
	)
	if api.workflows != nil {
		order, err = api.workflows.PlaceOrder(c.Request.Context(), input)
	} else {
		order, err = api.service.CreateOrder(c.Request.Context(), input)
	}
	if err != nil {
		api.problems.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.CreateOrderResponse{
		Message: orderCreatedMessage,
		Order:   orderhttpmapper.FromDomainOrder(order),
	})
}

// Get /api/orders
// List orders, optionally filtered by user and status
func (api *OrderAPI) ListOrders(c *gin.Context) {
	filter := orderports.ListFilter{
		UserID: c.Query("userId"),
		Status: orderdomain.Status(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Page:   pageParams(c),
	}
	api.listOrders(c, filter)
}

// Get /api/users/:id/orders
// List the orders of one user
func (api *OrderAPI) ListUserOrders(c *gin.Context) {
	filter := orderports.ListFilter{
		UserID: c.Param("id"),
		Page:   pageParams(c),
	}
	api.listOrders(c, filter)
}

func (api *OrderAPI) listOrders(c *gin.Context, filter orderports.ListFilter) {
	page, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		api.problems.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, orderhttpmapper.FromDomainOrder))
}

// Get /api/orders/:id
// Find an order with its line items
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id := c.Param("id")
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, api.problems, "order", id, orderports.ErrNotFound, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Patch /api/orders/:id/status
// Move an order to another status
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")
	var payload orderhttpmapper.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.problems.BadRequest(c, err.Error())
		return
	}
	status := orderdomain.Status(strings.ToLower(strings.TrimSpace(payload.Status)))
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), id, status)
	if err != nil {
		respondLookupError(c, api.problems, "order", id, orderports.ErrNotFound, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Delete /api/orders/:id
// Delete an order and its line items
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := api.service.DeleteOrder(c.Request.Context(), id); err != nil {
		respondLookupError(c, api.problems, "order", id, orderports.ErrNotFound, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pageParams(c *gin.Context) pagination.Params {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return pagination.Params{Page: page, Limit: limit}.Normalize()
}
