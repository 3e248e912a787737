// Package messaging publishes order events to Kafka.
package messaging

import (
	"context"
	"errors"

	orderdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/domain"
	orderports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/ports"
	platformkafka "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/platform/kafka"
)

// DefaultTopic receives order.created events when no topic is configured.
const DefaultTopic = "orders.events"

var _ orderports.EventPublisher = (*KafkaPublisher)(nil)

// JSONPublisher is satisfied by *platformkafka.Publisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, payload any) error
}

// KafkaPublisher keys every event by order id so a partition sees an order's
// events in sequence.
type KafkaPublisher struct {
	publisher JSONPublisher
}

func NewKafkaPublisher(publisher JSONPublisher) *KafkaPublisher {
	return &KafkaPublisher{publisher: publisher}
}

type envelope struct {
	Type string                   `json:"type"`
	Data orderdomain.OrderCreated `json:"data"`
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, event orderdomain.OrderCreated) error {
	if p == nil || p.publisher == nil {
		return errors.New("kafka order publisher not configured")
	}
	return p.publisher.PublishJSON(ctx, event.OrderID, envelope{Type: event.EventName(), Data: event})
}

// NewFromClient builds a publisher for topic, or returns ErrDisabled when no
// brokers are configured. The returned closer releases the writer.
func NewFromClient(client *platformkafka.Client, topic string) (*KafkaPublisher, func() error, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	writer, err := client.NewWriter(topic)
	if err != nil {
		return nil, nil, err
	}
	pub := platformkafka.NewPublisher(writer)
	return NewKafkaPublisher(pub), pub.Close, nil
}
