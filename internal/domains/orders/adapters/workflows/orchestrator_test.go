package workflows

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	ordermemory "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/memory"
	orderapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/application"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
)

type noUsers struct{}

func (noUsers) UserExists(context.Context, string) (bool, error) { return false, nil }

type emptyCatalog struct{}

func (emptyCatalog) FindProduct(context.Context, string) (*ports.ProductSnapshot, error) {
	return nil, nil
}

func (emptyCatalog) ReserveStock(context.Context, []ports.StockReservation) error { return nil }

func TestDecodeWorkflowError_RebuildsTypedError(t *testing.T) {
	details := orderapp.ErrorDetails{Kind: orderapp.KindProductNotFound, Message: "product ghost not found", ProductID: "ghost"}
	appErr := temporal.NewNonRetryableApplicationError(details.Message, string(details.Kind), nil, details)
	wrapped := fmt.Errorf("workflow execution error: %w", appErr)

	err := DecodeWorkflowError(wrapped)
	var notFound *orderapp.ProductNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ghost", notFound.ProductID)
}

func TestDecodeWorkflowError_UnknownBecomesPersistence(t *testing.T) {
	err := DecodeWorkflowError(errors.New("deadline exceeded"))
	assert.ErrorIs(t, err, orderapp.ErrPersistence)

	plain := temporal.NewApplicationError("boom", "unclassified")
	assert.ErrorIs(t, DecodeWorkflowError(plain), orderapp.ErrPersistence)
	assert.NoError(t, DecodeWorkflowError(nil))
}

func TestInlineOrderWorkflows_Delegates(t *testing.T) {
	svc := orderapp.NewService(ordermemory.NewRepository(), noUsers{}, emptyCatalog{})
	inline := NewInlineOrderWorkflows(svc)

	_, err := inline.PlaceOrder(context.Background(), ports.CreateOrderInput{UserID: "u1", Items: []ports.OrderLineInput{{ProductID: "p", Quantity: 1}}})
	assert.ErrorIs(t, err, orderapp.ErrUserNotFound)

	var unset *InlineOrderWorkflows
	_, err = unset.PlaceOrder(context.Background(), ports.CreateOrderInput{})
	assert.Error(t, err)
}

// startRecorder captures the start options and refuses to run the workflow.
type startRecorder struct {
	client.Client
	started []client.StartWorkflowOptions
}

func (r *startRecorder) ExecuteWorkflow(_ context.Context, options client.StartWorkflowOptions, _ interface{}, _ ...interface{}) (client.WorkflowRun, error) {
	r.started = append(r.started, options)
	return nil, errors.New("frontend unavailable")
}

func TestTemporalOrderWorkflows_StartOptions(t *testing.T) {
	recorder := &startRecorder{}
	orchestrator := NewTemporalOrderWorkflows(recorder)
	input := ports.CreateOrderInput{UserID: "u1", Items: []ports.OrderLineInput{{ProductID: "p", Quantity: 1}}}

	_, err := orchestrator.PlaceOrder(context.Background(), input)
	assert.ErrorIs(t, err, orderapp.ErrPersistence)
	_, err = orchestrator.PlaceOrder(context.Background(), input)
	assert.ErrorIs(t, err, orderapp.ErrPersistence)

	require.Len(t, recorder.started, 2)
	first := recorder.started[0]
	assert.Equal(t, PlacementTimeout, first.WorkflowExecutionTimeout)
	assert.Equal(t, enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE, first.WorkflowIDReusePolicy)
	assert.NotEqual(t, first.ID, recorder.started[1].ID)
}
