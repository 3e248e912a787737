package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
)

// ErrStockShortage is wrapped by *StockShortageError.
var ErrStockShortage = errors.New("stock shortage")

// UserDirectory answers whether an order may be attributed to a user.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// ProductSnapshot is the price and stock read at validation time.
type ProductSnapshot struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// StockReservation takes Quantity units of ProductID off the shelf.
type StockReservation struct {
	ProductID string
	Quantity  int
}

// StockShortageError reports a reservation the catalog could not honour.
type StockShortageError struct {
	ProductID string
	Available int
	Requested int
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("stock shortage for product %s: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *StockShortageError) Unwrap() error { return ErrStockShortage }

// ProductCatalog reads and reserves products on behalf of the order builder.
type ProductCatalog interface {
	// FindProduct returns (nil, nil) when the product does not exist.
	FindProduct(ctx context.Context, productID string) (*ProductSnapshot, error)
	// ReserveStock decrements all reservations or none. Shortages are
	// reported as *StockShortageError.
	ReserveStock(ctx context.Context, reservations []StockReservation) error
}

// EventPublisher announces committed orders. Delivery is best effort.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, domain.OrderCreated) error { return nil }
