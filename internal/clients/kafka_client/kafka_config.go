package kafka_client

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/trendeval/config"
)

const (
	MAX_RETRIES      = 3
	FLUSH_TIMEOUT_MS = 5000
)

func producerConfig(cfg config.KafkaConfig) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	}
}
