package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ezcrow/ramp/config"
	"github.com/ezcrow/ramp/pkg/logging"
	"github.com/ezcrow/ramp/pkg/messaging"
	"github.com/ezcrow/ramp/pkg/messaging/kafka"
)

// Tails order lifecycle events from Kafka, e.g. next to a loadtest run with
// -kafka enabled.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(logging.Config{Level: cfg.Server.LogLevel, Pretty: cfg.Server.LogFormat == "pretty"})
	logger := logging.FromContext(context.Background())

	consumer := kafka.NewConsumer(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic, "ramp-event-watch")
	defer consumer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info().Str("broker", cfg.Kafka.BrokerAddr).Str("topic", cfg.Kafka.Topic).Msg("Consuming order events")

	err = consumer.ConsumeOrderEvents(ctx, *logger, func(ev *messaging.OrderEvent) error {
		fmt.Printf("%-15s pair=%s order=%d %s -> %s\n", ev.Kind, ev.Pair, ev.OrderID, ev.PreviousStatus, ev.CurrentStatus)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Consumer stopped: %v", err)
	}
}
