package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	ordermemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/memory"
	orderapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/application"
	orderdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	orderactivities "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/durable/temporal/activities/orders"
)

type staticUsers struct{}

func (staticUsers) UserExists(_ context.Context, id string) (bool, error) { return id == "U1", nil }

type staticCatalog struct{}

func (staticCatalog) FindProduct(_ context.Context, id string) (*orderports.ProductSnapshot, error) {
	if id != "P2" {
		return nil, nil
	}
	return &orderports.ProductSnapshot{ID: "P2", Name: "Camiseta", Price: decimal.RequireFromString("20.00"), Stock: 1}, nil
}

func (staticCatalog) ReserveStock(context.Context, []orderports.StockReservation) error { return nil }

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	service := orderapp.NewService(ordermemory.NewRepository(), staticUsers{}, staticCatalog{})
	activities := orderactivities.NewActivities(service)
	env.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
	return env
}

func TestOrderPlacementWorkflow_Completes(t *testing.T) {
	env := newEnv(t)
	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{
		Command: orderports.CreateOrderInput{UserID: "U1", Items: []orderports.OrderLineInput{{ProductID: "P2", Quantity: 1}}},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var order orderdomain.Order
	require.NoError(t, env.GetWorkflowResult(&order))
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.Equal(t, "20.00", order.TotalAmount.StringFixed(2))
}

func TestOrderPlacementWorkflow_RejectionCarriesDetails(t *testing.T) {
	env := newEnv(t)
	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{
		Command: orderports.CreateOrderInput{UserID: "U1", Items: []orderports.OrderLineInput{{ProductID: "P2", Quantity: 3}}},
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, string(orderapp.KindInsufficientStock), appErr.Type())
	assert.True(t, appErr.NonRetryable())

	var details orderapp.ErrorDetails
	require.NoError(t, appErr.Details(&details))
	assert.Equal(t, "Camiseta", details.ProductName)
	assert.Equal(t, 1, details.Available)
	assert.Equal(t, 3, details.Requested)
}
