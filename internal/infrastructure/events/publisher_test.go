package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/shopfront/internal/config"
	"github.com/your-org/shopfront/internal/pkg/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherEncodesEvent(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, topic: "shop.orders", timeout: time.Second, log: logger.Discard()}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), Event{
		Type:       OrderPlaced,
		Key:        "42",
		OccurredAt: at,
		Payload:    map[string]interface{}{"orderId": 42},
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, OrderPlaced, string(msg.Headers[0].Value))

	var decoded struct {
		Type    string                 `json:"type"`
		Key     string                 `json:"key"`
		Payload map[string]interface{} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, OrderPlaced, decoded.Type)
	assert.Equal(t, float64(42), decoded.Payload["orderId"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{writer: w, topic: "shop.orders", log: logger.Discard()}

	err := p.Publish(context.Background(), Event{Type: OrderStatusChanged, Key: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Contains(t, err.Error(), OrderStatusChanged)
}

func TestNewPicksPublisher(t *testing.T) {
	cfg := &config.Config{}
	assert.IsType(t, &LogPublisher{}, New(cfg, logger.Discard()))

	cfg.Kafka = config.KafkaConfig{Brokers: []string{"localhost:9092"}, OrderTopic: "shop.orders"}
	p := New(cfg, logger.Discard())
	assert.IsType(t, &KafkaPublisher{}, p)
	require.NoError(t, p.Close())
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()
	require.NoError(t, p.Publish(ctx, Event{Type: OrderPlaced}))
	require.NoError(t, p.Publish(ctx, Event{Type: OrderStatusChanged}))

	assert.Equal(t, []string{OrderPlaced, OrderStatusChanged}, p.Types())
	assert.NoError(t, NewLogPublisher(logger.Discard()).Publish(ctx, Event{Type: OrderPlaced}))
}
