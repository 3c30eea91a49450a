// Package kafka provides an eventstream publisher backed by a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	segmentio "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/eventstream"
)

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Broker is the bootstrap broker address, e.g. "localhost:9092".
	Broker string

	// Topic is the topic pipeline events are written to.
	Topic string
}

// Publisher writes pipeline events to a Kafka topic as JSON, keyed by event
// type so consumers can partition on outcome.
type Publisher struct {
	writer *segmentio.Writer
	logger *zap.Logger
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(c Config, logger *zap.Logger) (*Publisher, error) {
	if c.Broker == "" {
		return nil, fmt.Errorf("kafka broker is required")
	}
	if c.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	writer := &segmentio.Writer{
		Addr:     segmentio.TCP(c.Broker),
		Topic:    c.Topic,
		Balancer: &segmentio.LeastBytes{},
		// Pipeline events are diagnostics; don't stall pipelines on a
		// slow broker.
		Async: true,
	}

	logger.Info("kafka event publisher configured",
		zap.String("broker", c.Broker),
		zap.String("topic", c.Topic),
	)

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// Publish writes the event to the configured topic.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.PipelineEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling pipeline event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, segmentio.Message{
		Key:   []byte(event.EventType),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("writing pipeline event: %w", err)
	}

	p.logger.Debug("pipeline event published",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.EventID),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
