package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product store used for local runs and tests.
type Repository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{products: map[string]*domain.Product{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := r.now().UTC()
	clone.CreatedAt, clone.UpdatedAt = ts, ts
	r.products[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Product, int64, error) {
	needle := strings.ToLower(strings.TrimSpace(filter.NameContains))
	r.mu.RLock()
	matched := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if needle != "" && !strings.Contains(strings.ToLower(product.Name), needle) {
			continue
		}
		clone := *product
		matched = append(matched, &clone)
	}
	r.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return pagination.Window(matched, filter.Page), int64(len(matched)), nil
}

// Update applies changes to the stored product under the write lock.
func (r *Repository) Update(_ context.Context, id string, changes ports.ProductChanges) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *existing
	changes.Apply(&clone)
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	clone.UpdatedAt = r.now().UTC()
	r.products[id] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// ReserveStock checks every reservation under the write lock before
// decrementing any of them.
func (r *Repository) ReserveStock(_ context.Context, reservations []ports.StockReservation) error {
	demand := aggregate(reservations)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range demand {
		product, ok := r.products[res.ProductID]
		if !ok {
			return &ports.MissingProductError{ProductID: res.ProductID}
		}
		if product.Stock < res.Quantity {
			return &ports.StockShortageError{ProductID: res.ProductID, Available: product.Stock, Requested: res.Quantity}
		}
	}
	ts := r.now().UTC()
	for _, res := range demand {
		product := r.products[res.ProductID]
		product.Stock -= res.Quantity
		product.UpdatedAt = ts
	}
	return nil
}

// aggregate folds repeated products together, preserving first-seen order.
func aggregate(reservations []ports.StockReservation) []ports.StockReservation {
	index := map[string]int{}
	out := make([]ports.StockReservation, 0, len(reservations))
	for _, res := range reservations {
		if i, ok := index[res.ProductID]; ok {
			out[i].Quantity += res.Quantity
			continue
		}
		index[res.ProductID] = len(out)
		out = append(out, res)
	}
	return out
}
