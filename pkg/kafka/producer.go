package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/INOCcent-afk/productly-server/pkg/logger"
)

// Producer publishes events to a single Kafka topic.
type Producer struct {
	writer *kafkago.Writer
	topic  string
	log    *slog.Logger
}

// ProducerConfig holds settings for a Kafka producer.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// DefaultProducerConfig returns sensible defaults for the Kafka producer.
func DefaultProducerConfig(brokers []string, topic string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		Topic:        topic,
		BatchTimeout: 100 * time.Millisecond,
	}
}

// NewProducer creates a producer for the given topic. Messages are keyed by
// the caller-supplied key so events for the same entity stay ordered within a
// partition.
func NewProducer(cfg ProducerConfig, log *slog.Logger) *Producer {
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafkago.RequireOne,
	}

	return &Producer{
		writer: writer,
		topic:  cfg.Topic,
		log:    log,
	}
}

// Publish wraps the event with its context correlation ID and writes it to
// the topic.
func (p *Producer) Publish(ctx context.Context, key string, event *Event) error {
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.CorrelationID = id
	}

	value, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.Type, err)
	}

	msg := kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing to topic %s: %w", p.topic, err)
	}

	p.log.DebugContext(ctx, "event published",
		slog.String("topic", p.topic),
		slog.String("event_type", event.Type),
		slog.String("event_id", event.ID),
	)

	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// PingBrokers dials each broker to verify connectivity. Used by readiness
// checks.
func PingBrokers(ctx context.Context, brokers []string) error {
	d := &kafkago.Dialer{Timeout: 5 * time.Second}
	for _, addr := range brokers {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("dialing broker %s: %w", addr, err)
		}
		conn.Close()
	}
	return nil
}
