package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"inkpress/logger"
)

// KafkaBus is the confluent-kafka-go backed Bus implementation. This service
// only produces; consumers live in other deployments.
type KafkaBus struct {
	Producer *kafka.Producer
	Brokers  string
}

// NewKafkaBus initializes the Kafka producer.
func NewKafkaBus(brokers string) (*KafkaBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer creation failed: %w", err)
	}

	// Drain delivery reports so the producer queue does not fill up.
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Log.Errorf("event delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				logger.Log.Errorf("kafka error: %v", ev)
			}
		}
	}()

	return &KafkaBus{
		Producer: p,
		Brokers:  brokers,
	}, nil
}

// Close flushes pending messages and shuts the producer down.
func (k *KafkaBus) Close() {
	if k.Producer != nil {
		if remaining := k.Producer.Flush(5000); remaining > 0 {
			logger.Log.Warnf("%d messages still pending after flush", remaining)
		}
		k.Producer.Close()
		logger.Log.Info("kafka producer closed")
	}
}

// Publish writes an event to the given topic and waits for the delivery
// report or context cancellation.
func (k *KafkaBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event marshal failed: %w", err)
	}

	// Buffered and never closed: when the context expires before the broker
	// answers, the delayed delivery report lands in the buffer instead of
	// panicking the producer's poller with a send on a closed channel.
	deliveryChan := make(chan kafka.Event, 1)

	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("event produce failed: %w", err)
	}

	return awaitDelivery(ctx, deliveryChan)
}

// awaitDelivery waits for the delivery report or context expiry.
func awaitDelivery(ctx context.Context, deliveryChan chan kafka.Event) error {
	select {
	case ev := <-deliveryChan:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("event delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
