package mapper

import (
	"time"

	orderdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
)

// CreateOrderLine is one entry of the products array.
type CreateOrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest is the POST /api/orders payload.
type CreateOrderRequest struct {
	UserID   string            `json:"userId"`
	Products []CreateOrderLine `json:"products"`
}

// UpdateOrderStatusRequest is the PATCH /api/orders/:id/status payload.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderItem is the transport shape of a line item. Money is rendered with two decimals.
type OrderItem struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	Quantity   int       `json:"quantity"`
	UnitPrice  string    `json:"unitPrice"`
	TotalPrice string    `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Order is the transport shape of an order. Items is omitted on list views.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Status      string      `json:"status"`
	TotalAmount string      `json:"totalAmount"`
	Items       []OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CreateOrderResponse wraps the created order with a confirmation message.
type CreateOrderResponse struct {
	Message string `json:"message"`
	Order   Order  `json:"order"`
}

func ToCreateInput(req CreateOrderRequest) orderports.CreateOrderInput {
	items := make([]orderports.OrderLineInput, 0, len(req.Products))
	for _, line := range req.Products {
		items = append(items, orderports.OrderLineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return orderports.CreateOrderInput{UserID: req.UserID, Items: items}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *orderdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.StringFixed(2),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if len(order.Items) > 0 {
		out.Items = make([]OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			out.Items = append(out.Items, OrderItem{
				ID:         item.ID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice.StringFixed(2),
				TotalPrice: item.LineTotal.StringFixed(2),
				CreatedAt:  item.CreatedAt,
			})
		}
	}
	return out
}
