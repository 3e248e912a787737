package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/application"
	orderdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

type stubService struct {
	createErr error
}

func (s stubService) CreateOrder(context.Context, orderports.CreateOrderInput) (*orderdomain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &orderdomain.Order{ID: "o1", Status: orderdomain.StatusPending}, nil
}

func (stubService) GetOrder(context.Context, string) (*orderdomain.Order, error) {
	return nil, orderports.ErrNotFound
}

func (stubService) ListOrders(context.Context, orderports.ListFilter) (*pagination.Page[*orderdomain.Order], error) {
	return pagination.New[*orderdomain.Order](nil, 0, pagination.Params{}), nil
}

func (stubService) UpdateOrderStatus(_ context.Context, id string, status orderdomain.Status) (*orderdomain.Order, error) {
	return &orderdomain.Order{ID: id, Status: status}, nil
}

func (stubService) DeleteOrder(context.Context, string) error { return nil }

func TestCreateOrder_RejectionsLoggedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := New(stubService{createErr: &orderapp.UserNotFoundError{UserID: "u9"}}, WithLogger(logger))

	_, err := svc.CreateOrder(context.Background(), orderports.CreateOrderInput{UserID: "u9"})
	require.ErrorIs(t, err, orderapp.ErrUserNotFound)
	assert.Contains(t, buf.String(), `"msg":"order rejected"`)
	assert.Contains(t, buf.String(), `"kind":"user_not_found"`)
	assert.NotContains(t, buf.String(), `"level":"ERROR"`)
}

func TestCreateOrder_PersistenceLoggedAsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	svc := New(stubService{createErr: &orderapp.PersistenceError{Op: "create order", Err: errors.New("disk full")}}, WithLogger(logger))

	_, err := svc.CreateOrder(context.Background(), orderports.CreateOrderInput{UserID: "u1"})
	require.ErrorIs(t, err, orderapp.ErrPersistence)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "disk full")
}

func TestDecoratorPassesThrough(t *testing.T) {
	svc := New(stubService{})
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, orderports.CreateOrderInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)

	_, err = svc.GetOrder(ctx, "x")
	assert.ErrorIs(t, err, orderports.ErrNotFound)

	updated, err := svc.UpdateOrderStatus(ctx, "o1", orderdomain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusDelivered, updated.Status)

	page, err := svc.ListOrders(ctx, orderports.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	require.NoError(t, svc.DeleteOrder(ctx, "o1"))
}
