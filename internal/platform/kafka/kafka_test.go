package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewClient_ParsesBrokers(t *testing.T) {
	c := NewClient(" a:9092, ,b:9092 ")
	require.Equal(t, []string{"a:9092", "b:9092"}, c.Brokers)
	require.True(t, c.Enabled())

	empty := NewClient("")
	require.False(t, empty.Enabled())
	_, err := empty.NewWriter("orders")
	require.ErrorIs(t, err, ErrDisabled)
}

func TestNewWriter_FlushesSingleMessagesQuickly(t *testing.T) {
	w, err := NewClient("localhost:9092").NewWriter("orders")
	require.NoError(t, err)
	require.Equal(t, "orders", w.Topic)
	require.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	require.Less(t, w.BatchTimeout, time.Second)
}

func TestPublisher_PublishJSON(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisher(w)

	err := p.PublishJSON(context.Background(), "order-1", map[string]string{"id": "order-1"})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	require.Equal(t, "order-1", string(w.messages[0].Key))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	require.Equal(t, "order-1", decoded["id"])

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestPublisher_NilWriter(t *testing.T) {
	var p *Publisher
	require.ErrorIs(t, p.PublishJSON(context.Background(), "k", nil), ErrDisabled)
}
