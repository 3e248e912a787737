package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/application"
	orderdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
)

const (
	// PlaceOrderActivityName validates and stores an order through the order builder.
	PlaceOrderActivityName = "orders.activities.PlaceOrder"
	// UnclassifiedErrorType marks failures the order builder did not classify.
	UnclassifiedErrorType = "unclassified"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder runs the order builder. Every failure is non-retryable and
// carries ErrorDetails so the caller can rebuild the typed error.
func (a *Activities) PlaceOrder(ctx context.Context, input orderports.CreateOrderInput) (*orderdomain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order placement activity not initialized", "userId", input.UserID)
		return nil, temporal.NewNonRetryableApplicationError("order placement activity not initialized", UnclassifiedErrorType, errors.New("nil service"))
	}
	logger.Info("PlaceOrder activity started", "userId", input.UserID, "lines", len(input.Items))
	order, err := a.service.CreateOrder(ctx, input)
	if err != nil {
		details, ok := orderapp.DetailsOf(err)
		if !ok {
			logger.Error("PlaceOrder activity failed", "userId", input.UserID, "error", err)
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), UnclassifiedErrorType, err)
		}
		logger.Info("PlaceOrder activity rejected", "userId", input.UserID, "kind", string(details.Kind), "error", err)
		return nil, temporal.NewNonRetryableApplicationError(details.Message, string(details.Kind), err, details)
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID)
	return order, nil
}
