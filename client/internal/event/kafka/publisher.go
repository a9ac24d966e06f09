// Package kafka publishes favorite events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhishek622/foodreview/favorite/pkg/model"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

const flushTimeoutMs = 10_000

// Publisher produces favorite events keyed by user email.
type Publisher struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
	done     chan struct{}
}

// NewPublisher creates a publisher connected to brokers.
func NewPublisher(brokers, topic string, logger *zap.Logger) (*Publisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	p := &Publisher{producer: producer, topic: topic, logger: logger, done: make(chan struct{})}
	go p.reportDeliveries()
	return p, nil
}

func (p *Publisher) reportDeliveries() {
	defer close(p.done)
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Warn("Favorite event delivery failed",
					zap.String("key", string(ev.Key)), zap.Error(ev.TopicPartition.Error))
			}
		case kafka.Error:
			p.logger.Warn("Kafka producer error", zap.Error(ev))
		}
	}
}

// Publish queues event for delivery. Delivery failures are logged asynchronously.
func (p *Publisher) Publish(ctx context.Context, event model.FavoriteEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := encodeEvent(p.topic, event)
	if err != nil {
		return err
	}
	return p.producer.Produce(msg, nil)
}

// Close waits for outstanding messages and closes the producer.
func (p *Publisher) Close() error {
	remaining := p.producer.Flush(flushTimeoutMs)
	p.producer.Close()
	<-p.done
	if remaining != 0 {
		return fmt.Errorf("%d favorite events not delivered", remaining)
	}
	return nil
}

func encodeEvent(topic string, event model.FavoriteEvent) (*kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode favorite event: %w", err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.UserEmail),
		Value:          payload,
	}, nil
}
