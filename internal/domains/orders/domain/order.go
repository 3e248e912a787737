package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrEmptyUserID     = errors.New("user id is required")
	ErrEmptyProductID  = errors.New("product id is required")
	ErrNoItems         = errors.New("order must contain at least one product")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNegativePrice   = errors.New("unit price must not be negative")
	ErrInvalidStatus   = errors.New("order status is invalid")
	ErrTotalMismatch   = errors.New("order total does not match its line items")
)

// LineItem is one product entry in an order with its price snapshot.
type LineItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	CreatedAt time.Time
}

// NewLineItem captures the unit price at order time and derives the line total.
func NewLineItem(productID string, quantity int, unitPrice decimal.Decimal) (LineItem, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return LineItem{}, ErrEmptyProductID
	}
	if quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return LineItem{}, ErrNegativePrice
	}
	price := unitPrice.Round(2)
	return LineItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: price,
		LineTotal: price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}, nil
}

// Order is the purchase aggregate. TotalAmount is derived from Items.
type Order struct {
	ID          string
	UserID      string
	Status      Status
	TotalAmount decimal.Decimal
	Items       []LineItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder builds a pending order whose total is the sum of its line totals.
func NewOrder(userID string, items []LineItem) (*Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	order := &Order{
		UserID: userID,
		Status: StatusPending,
		Items:  append([]LineItem(nil), items...),
	}
	order.TotalAmount = SumLineTotals(order.Items)
	return order, nil
}

// SumLineTotals adds up line totals at cent precision.
func SumLineTotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total.Round(2)
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.UserID) == "" {
		return ErrEmptyUserID
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return ErrNegativePrice
		}
	}
	if !o.TotalAmount.Equal(SumLineTotals(o.Items)) {
		return ErrTotalMismatch
	}
	return nil
}

// UpdateStatus moves the order to any known status.
func (o *Order) UpdateStatus(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	o.Status = status
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored items.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}

// ParseStatus accepts a status name in any case.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}
