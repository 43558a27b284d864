package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/trendeval/config"
	"github.com/spacesedan/trendeval/internal/models"
)

// Producer publishes evaluation records to a single topic.
type Producer struct {
	producer *kafka.Producer
	topic    string
}

func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(producerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &Producer{producer: p, topic: cfg.Topic}, nil
}

func (p *Producer) Name() string {
	return "kafka"
}

func (p *Producer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := p.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
}

// NewEvaluationMessage keys the message by experiment id so every run of an
// experiment lands on the same partition.
func NewEvaluationMessage(topic string, rec models.EvaluationRecord) (*kafka.Message, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] failed to marshal evaluation: %w", err)
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(rec.ExperimentID),
		Value:          payload,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(rec.RunID)},
			{Key: "average", Value: []byte(rec.Average)},
		},
	}, nil
}

// Publish produces the record and waits for its delivery report.
func (p *Producer) Publish(ctx context.Context, rec models.EvaluationRecord) error {
	msg, err := NewEvaluationMessage(p.topic, rec)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	for i := 0; i < MAX_RETRIES; i++ {
		err = p.producer.Produce(msg, delivery)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce after %d attempts: %w", MAX_RETRIES, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] unexpected delivery event: %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaClient] delivery failed: %w", m.TopicPartition.Error)
		}
	}

	slog.Info("[KafkaClient] Published evaluation",
		slog.String("topic", p.topic),
		slog.String("run_id", rec.RunID))
	return nil
}
