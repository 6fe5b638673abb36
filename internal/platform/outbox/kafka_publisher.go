package outbox

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes outbox records to a single topic, partitioned by the
// record's partition key so events for one aggregate stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, record Record) error {
	message := kafka.Message{
		Key:   []byte(record.PartitionKey),
		Value: record.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(record.EventType)},
			{Key: "event_id", Value: []byte(record.OutboxID.String())},
		},
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("publish %s: %w", record.EventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
