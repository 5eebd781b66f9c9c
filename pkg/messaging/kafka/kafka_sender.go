package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ezcrow/ramp/pkg/messaging"
	"github.com/segmentio/kafka-go"
)

// KafkaEventSender implements EventSender using Kafka
type KafkaEventSender struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaEventSender creates a new Kafka event sender
func NewKafkaEventSender(brokerAddr, topic string) (*KafkaEventSender, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaEventSender{
		writer: writer,
		topic:  topic,
	}, nil
}

// SendListingEvent sends a listing event to Kafka, keyed by pair and listing id
func (k *KafkaEventSender) SendListingEvent(ev *messaging.ListingEvent) error {
	return k.send(ev.Pair+"/listing/"+strconv.FormatInt(ev.ListingID, 10), ev)
}

// SendOrderEvent sends an order event to Kafka, keyed by pair and order id
func (k *KafkaEventSender) SendOrderEvent(ev *messaging.OrderEvent) error {
	return k.send(ev.Pair+"/order/"+strconv.FormatInt(ev.OrderID, 10), ev)
}

func (k *KafkaEventSender) send(key string, ev any) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka writer
func (k *KafkaEventSender) Close() error {
	return k.writer.Close()
}

// Ensure KafkaEventSender implements EventSender
var _ messaging.EventSender = (*KafkaEventSender)(nil)
