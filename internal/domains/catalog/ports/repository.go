package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockReservation asks for Quantity units of ProductID to be taken off the shelf.
type StockReservation struct {
	ProductID string
	Quantity  int
}

// StockShortageError reports the first reservation that could not be honoured.
type StockShortageError struct {
	ProductID string
	Available int
	Requested int
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *StockShortageError) Unwrap() error { return ErrInsufficientStock }

// MissingProductError names a reservation whose product does not exist.
type MissingProductError struct {
	ProductID string
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *MissingProductError) Unwrap() error { return ErrNotFound }

// ListFilter narrows product listings.
type ListFilter struct {
	NameContains string
	Page         pagination.Params
}

// ProductChanges names the columns an update writes; nil fields are left
// untouched so a rename never overwrites stock reserved in the meantime.
type ProductChanges struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

// Empty reports whether no column would be written.
func (c ProductChanges) Empty() bool {
	return c.Name == nil && c.Description == nil && c.Price == nil && c.Stock == nil
}

// Apply copies the set fields onto product.
func (c ProductChanges) Apply(product *domain.Product) {
	if c.Name != nil {
		product.Name = *c.Name
	}
	if c.Description != nil {
		product.Description = *c.Description
	}
	if c.Price != nil {
		product.Price = *c.Price
	}
	if c.Stock != nil {
		product.Stock = *c.Stock
	}
}

// Repository persists products. Create assigns the identifier and timestamps.
type Repository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Product, int64, error)
	// Update writes only the fields set in changes.
	Update(ctx context.Context, id string, changes ProductChanges) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	// ReserveStock decrements every reservation or none of them. A shortage is
	// reported as *StockShortageError, an unknown product as *MissingProductError.
	ReserveStock(ctx context.Context, reservations []StockReservation) error
}
