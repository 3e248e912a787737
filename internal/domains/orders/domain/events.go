package domain

import "time"

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderCreatedLine is the per-product slice of an OrderCreated event.
type OrderCreatedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

// OrderCreated is raised once an order and its line items are committed.
type OrderCreated struct {
	BaseEvent
	OrderID     string             `json:"orderId"`
	UserID      string             `json:"userId"`
	Status      Status             `json:"status"`
	TotalAmount string             `json:"totalAmount"`
	Items       []OrderCreatedLine `json:"items"`
}

// EventName returns the event type identifier.
func (e OrderCreated) EventName() string {
	return "orders.order.created"
}

// NewOrderCreated snapshots a persisted order into an event.
func NewOrderCreated(order *Order) OrderCreated {
	lines := make([]OrderCreatedLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, OrderCreatedLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}
	return OrderCreated{
		BaseEvent:   BaseEvent{Timestamp: order.CreatedAt},
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount.StringFixed(2),
		Items:       lines,
	}
}
