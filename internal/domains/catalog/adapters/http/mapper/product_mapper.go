package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/domain"
	catalogports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/ports"
)

// CreateProductRequest is the POST /api/products payload. Price accepts a
// JSON number or a numeric string.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// UpdateProductRequest is the PUT /api/products/:id payload; omitted fields are left untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
}

// Product is the transport shape. Price is rendered with two decimals.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ToCreateInput(req CreateProductRequest) catalogports.CreateProductInput {
	return catalogports.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
}

func ToUpdateInput(id string, req UpdateProductRequest) catalogports.UpdateProductInput {
	return catalogports.UpdateProductInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
}

func FromDomainProduct(product *catalogdomain.Product) Product {
	if product == nil {
		return Product{}
	}
	return Product{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		Stock:       product.Stock,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
