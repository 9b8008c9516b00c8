// Package kafka publishes knowledge events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/quietmindco/engram/pkg/eventstream"
)

// Config holds Kafka publisher settings.
type Config struct {
	Brokers []string
	Topic   string
}

// Publisher publishes events to a Kafka topic, keyed by entity.
type Publisher struct {
	writer *kafkago.Writer
}

var _ eventstream.Publisher = (*Publisher)(nil)

// NewPublisher creates a Kafka publisher over the given brokers and topic.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &Publisher{writer: writer}, nil
}

// Publish sends one event to the configured topic. Events with an entity are
// keyed by it; entity-less events are distributed by the balancer.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.Event) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var key []byte
	if event.Entity != "" {
		key = []byte(event.Entity)
	}

	msg := kafkago.Message{
		Key:   key,
		Value: payload,
		Time:  event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
