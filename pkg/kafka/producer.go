package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	writeTimeout = 5 * time.Second
	// Events are written one at a time; a short batch timeout flushes each
	// write instead of waiting for the 1s default.
	batchTimeout = 10 * time.Millisecond
)

// messageWriter is the part of *kafkago.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes order events to one topic, keyed by order ID so the
// events of an order stay in one partition.
type Producer struct {
	writer messageWriter
}

// NewProducer creates a new instance of Producer writing to topic.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	return &Producer{writer: &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchSize:              1,
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}}, nil
}

// Publish writes body with the event name in the "event" header.
func (p *Producer) Publish(ctx context.Context, routingKey string, body []byte) error {
	var head struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return fmt.Errorf("kafka: event is not JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte(head.OrderID),
		Value:   body,
		Headers: []kafkago.Header{{Key: "event", Value: []byte(routingKey)}},
		Time:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
