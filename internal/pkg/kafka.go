package pkg

import (
	"context"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// EventHeader carries the outbox event type on every published message.
const EventHeader = "event"

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaProducer publishes blog events keyed by aggregate id, so every event
// for one post or one author lands on the same partition in order.
type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(cfg KafkaConfig) *KafkaProducer {
	return &KafkaProducer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *KafkaProducer) Publish(ctx context.Context, event string, aggregateID uint64, payload []byte) error {
	return p.writer.WriteMessages(ctx, EventMessage(event, aggregateID, payload))
}

func EventMessage(event string, aggregateID uint64, payload []byte) kafka.Message {
	return kafka.Message{
		Key:     []byte(strconv.FormatUint(aggregateID, 10)),
		Value:   payload,
		Headers: []kafka.Header{{Key: EventHeader, Value: []byte(event)}},
	}
}
