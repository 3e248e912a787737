package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName     = errors.New("product name is required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrNegativeStock = errors.New("stock must not be negative")
)

// Product is a sellable item with a unit price and units on hand.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct validates and constructs a product.
func NewProduct(name, description string, price decimal.Decimal, stock int) (*Product, error) {
	p := &Product{}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	p.Describe(description)
	if err := p.Reprice(price); err != nil {
		return nil, err
	}
	if err := p.Restock(stock); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

func (p *Product) Describe(description string) {
	p.Description = strings.TrimSpace(description)
}

// Reprice sets the unit price rounded to cents.
func (p *Product) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	p.Price = price.Round(2)
	return nil
}

// Restock replaces the units on hand.
func (p *Product) Restock(stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	p.Stock = stock
	return nil
}

// CanFulfil reports whether quantity units are on hand.
func (p *Product) CanFulfil(quantity int) bool {
	return p.Stock >= quantity
}

// Validate re-applies invariants before persistence.
func (p *Product) Validate() error {
	if err := p.Rename(p.Name); err != nil {
		return err
	}
	if err := p.Reprice(p.Price); err != nil {
		return err
	}
	return p.Restock(p.Stock)
}
