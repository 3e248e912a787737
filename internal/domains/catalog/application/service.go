package application

import (
	"context"
	"strings"

	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/domain"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(input.Name, input.Description, input.Price, input.Stock)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) ListProducts(ctx context.Context, filter ports.ListFilter) (*pagination.Page[*domain.Product], error) {
	filter.Page = filter.Page.Normalize()
	filter.NameContains = strings.TrimSpace(filter.NameContains)
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return pagination.New(products, total, filter.Page), nil
}

// UpdateProduct applies a partial update; price and stock guards still hold.
// Only the fields present in input reach the repository.
func (s *Service) UpdateProduct(ctx context.Context, input ports.UpdateProductInput) (*domain.Product, error) {
	id := strings.TrimSpace(input.ID)
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var changes ports.ProductChanges
	if input.Name != nil {
		if err := product.Rename(*input.Name); err != nil {
			return nil, mapError(err)
		}
		changes.Name = &product.Name
	}
	if input.Description != nil {
		product.Describe(*input.Description)
		changes.Description = &product.Description
	}
	if input.Price != nil {
		if err := product.Reprice(*input.Price); err != nil {
			return nil, mapError(err)
		}
		changes.Price = &product.Price
	}
	if input.Stock != nil {
		if err := product.Restock(*input.Stock); err != nil {
			return nil, mapError(err)
		}
		changes.Stock = &product.Stock
	}
	if changes.Empty() {
		return product, nil
	}
	return s.repo.Update(ctx, id, changes)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}

var _ ports.Service = (*Service)(nil)
