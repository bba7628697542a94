// internal/infrastructure/events/kafka.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/your-org/shopfront/internal/config"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes JSON encoded events to a single topic
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewKafkaPublisher creates a publisher for cfg.Kafka.OrderTopic
func NewKafkaPublisher(cfg config.KafkaConfig, log logrus.FieldLogger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.OrderTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{
		writer:  writer,
		topic:   cfg.OrderTopic,
		timeout: cfg.WriteTimeout,
		log:     log,
	}
}

// Publish writes the event and waits for the broker acknowledgement
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish %s to %s: %w", event.Type, p.topic, err)
	}

	p.log.WithFields(logrus.Fields{
		"event": event.Type,
		"key":   event.Key,
		"topic": p.topic,
	}).Debug("event published")
	return nil
}

// Close flushes pending writes
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(event Event) (kafka.Message, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: encode %s: %w", event.Type, err)
	}
	return kafka.Message{
		Key:   []byte(event.Key),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}

// New picks the Kafka publisher when brokers are configured and the log
// publisher otherwise.
func New(cfg *config.Config, log logrus.FieldLogger) Publisher {
	if cfg.KafkaEnabled() {
		log.WithField("brokers", cfg.Kafka.Brokers).Info("publishing order events to kafka")
		return NewKafkaPublisher(cfg.Kafka, log)
	}
	return NewLogPublisher(log)
}
