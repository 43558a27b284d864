// Package publish fans an evaluation record out to the configured sinks.
package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/trendeval/config"
	"github.com/spacesedan/trendeval/internal/clients"
	"github.com/spacesedan/trendeval/internal/clients/kafka_client"
	"github.com/spacesedan/trendeval/internal/db"
	"github.com/spacesedan/trendeval/internal/models"
)

const (
	SinkValkey   = "valkey"
	SinkDynamoDB = "dynamodb"
	SinkKafka    = "kafka"
)

// Sink is an external store an evaluation record can be published to.
type Sink interface {
	Name() string
	Publish(ctx context.Context, rec models.EvaluationRecord) error
	Close()
}

// Publisher holds the sinks that could be opened.
type Publisher struct {
	sinks []Sink
}

func NewPublisher(sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks}
}

// ValidateSinks rejects unknown sink names before anything is opened.
func ValidateSinks(names []string) error {
	for _, name := range names {
		switch name {
		case SinkValkey, SinkDynamoDB, SinkKafka:
		default:
			return fmt.Errorf("unknown result sink %q (want %s, %s or %s)", name, SinkValkey, SinkDynamoDB, SinkKafka)
		}
	}
	return nil
}

// Open connects every named sink. A sink that fails to connect is logged
// and left out.
func Open(ctx context.Context, cfg config.Config, names []string) (*Publisher, error) {
	if err := ValidateSinks(names); err != nil {
		return nil, err
	}

	p := &Publisher{}
	for _, name := range names {
		sink, err := openSink(ctx, cfg, name)
		if err != nil {
			slog.Error("[Publisher] Failed to open result sink",
				slog.String("sink", name),
				slog.String("error", err.Error()))
			continue
		}
		p.sinks = append(p.sinks, sink)
	}
	return p, nil
}

func openSink(ctx context.Context, cfg config.Config, name string) (Sink, error) {
	switch name {
	case SinkValkey:
		return clients.NewValkeyClient(ctx, cfg.Valkey)
	case SinkDynamoDB:
		client, err := clients.GetDynamoDBClient(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		return db.NewEvaluationStore(client, cfg.AWS.TableName), nil
	case SinkKafka:
		return kafka_client.NewProducer(cfg.Kafka)
	}
	return nil, fmt.Errorf("unknown result sink %q", name)
}

// Publish sends rec to every sink and returns how many failed. Failures
// are logged, never returned.
func (p *Publisher) Publish(ctx context.Context, rec models.EvaluationRecord) int {
	failed := 0
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, rec); err != nil {
			failed++
			slog.Error("[Publisher] Failed to publish evaluation",
				slog.String("sink", sink.Name()),
				slog.String("run_id", rec.RunID),
				slog.String("error", err.Error()))
			continue
		}
		slog.Debug("[Publisher] Published evaluation", slog.String("sink", sink.Name()))
	}
	return failed
}

func (p *Publisher) Len() int {
	return len(p.sinks)
}

func (p *Publisher) Close() {
	for _, sink := range p.sinks {
		sink.Close()
	}
}
