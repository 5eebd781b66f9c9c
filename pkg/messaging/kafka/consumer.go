package kafka

import (
	"context"
	"encoding/json"

	"github.com/ezcrow/ramp/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Consumer reads lifecycle events back from Kafka, e.g. for downstream
// indexers or notification services.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a consumer for the given broker and topic
func NewConsumer(brokerAddr, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{brokerAddr},
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// ConsumeOrderEvents reads order events until the context is cancelled,
// invoking handler for each decoded event. Messages that do not decode as
// order events are skipped with a warning.
func (c *Consumer) ConsumeOrderEvents(ctx context.Context, logger zerolog.Logger, handler func(*messaging.OrderEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var ev messaging.OrderEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil || ev.Kind == "" {
			logger.Warn().Err(err).Str("key", string(msg.Key)).Msg("Skipping undecodable event")
			continue
		}

		if err := handler(&ev); err != nil {
			logger.Error().Err(err).Int64("order_id", ev.OrderID).Msg("Event handler failed")
		}
	}
}

// Close closes the underlying reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
