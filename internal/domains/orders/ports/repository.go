package ports

import (
	"context"
	"errors"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

var ErrNotFound = errors.New("order not found")

// ListFilter narrows order listings. Empty fields do not filter.
type ListFilter struct {
	UserID string
	Status domain.Status
	Page   pagination.Params
}

// Repository persists the order aggregate.
type Repository interface {
	// Create stores the header and every line item atomically and assigns
	// identifiers and timestamps. Readers never observe a partial order.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// GetByID and List return headers only; line items come from ListItems.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// List is ordered newest first.
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, int64, error)
	// ListItems returns ErrNotFound when the order does not exist.
	ListItems(ctx context.Context, orderID string) ([]domain.LineItem, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	// Delete removes the order and its line items.
	Delete(ctx context.Context, id string) error
}

// TxManager scopes a unit of work. Repositories called with the ctx passed
// to fn join the same transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
