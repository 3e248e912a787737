// Package directory adapts the users and catalog repositories to the
// collaborator ports the order builder depends on.
package directory

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	catalogports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	userdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/domain"
	userports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/ports"
)

var (
	_ ports.UserDirectory  = (*Users)(nil)
	_ ports.ProductCatalog = (*Products)(nil)
)

// UserLookup is the subset of the users repository needed here.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Users answers existence checks from the users repository.
type Users struct {
	repo UserLookup
}

func NewUsers(repo UserLookup) *Users {
	return &Users{repo: repo}
}

func (u *Users) UserExists(ctx context.Context, userID string) (bool, error) {
	if u == nil || u.repo == nil {
		return false, errors.New("user directory not configured")
	}
	_, err := u.repo.GetByID(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, userports.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Products reads snapshots from and reserves stock in the catalog repository.
// Concurrent lookups of the same product share a single repository read;
// each caller receives its own copy of the snapshot.
type Products struct {
	repo catalogports.Repository
	sf   singleflight.Group
}

func NewProducts(repo catalogports.Repository) *Products {
	return &Products{repo: repo}
}

func (p *Products) FindProduct(ctx context.Context, productID string) (*ports.ProductSnapshot, error) {
	if p == nil || p.repo == nil {
		return nil, errors.New("product catalog not configured")
	}
	// The read is shared by every waiting caller, so one caller giving up
	// must not fail the others.
	shared := context.WithoutCancel(ctx)
	v, err, _ := p.sf.Do(productID, func() (interface{}, error) {
		return p.lookup(shared, productID)
	})
	if err != nil {
		return nil, err
	}
	snapshot, _ := v.(*ports.ProductSnapshot)
	if snapshot == nil {
		return nil, nil
	}
	out := *snapshot
	return &out, nil
}

func (p *Products) lookup(ctx context.Context, productID string) (*ports.ProductSnapshot, error) {
	product, err := p.repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.ProductSnapshot{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
	}, nil
}

// ReserveStock forwards to the catalog. A product deleted since validation
// reports as a shortage with nothing available.
func (p *Products) ReserveStock(ctx context.Context, reservations []ports.StockReservation) error {
	if p == nil || p.repo == nil {
		return errors.New("product catalog not configured")
	}
	req := make([]catalogports.StockReservation, 0, len(reservations))
	for _, res := range reservations {
		req = append(req, catalogports.StockReservation{ProductID: res.ProductID, Quantity: res.Quantity})
	}
	err := p.repo.ReserveStock(ctx, req)
	var (
		shortage *catalogports.StockShortageError
		missing  *catalogports.MissingProductError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &shortage):
		return &ports.StockShortageError{ProductID: shortage.ProductID, Available: shortage.Available, Requested: shortage.Requested}
	case errors.As(err, &missing):
		return &ports.StockShortageError{ProductID: missing.ProductID, Requested: demandFor(reservations, missing.ProductID)}
	default:
		return err
	}
}

func demandFor(reservations []ports.StockReservation, productID string) int {
	total := 0
	for _, res := range reservations {
		if res.ProductID == productID {
			total += res.Quantity
		}
	}
	return total
}
