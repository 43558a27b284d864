package kafka_client

import (
	"encoding/json"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/trendeval/config"
	"github.com/spacesedan/trendeval/internal/models"
)

func TestNewEvaluationMessage(t *testing.T) {
	rec := models.EvaluationRecord{
		RunID:        "run-1",
		ExperimentID: "dbrx-instruct_seed-13",
		Average:      "macro",
		Performance:  models.Performance{Accuracy: 0.25},
	}

	msg, err := NewEvaluationMessage("evaluation-results", rec)
	require.NoError(t, err)

	assert.Equal(t, "evaluation-results", *msg.TopicPartition.Topic)
	assert.Equal(t, kafka.PartitionAny, msg.TopicPartition.Partition)
	assert.Equal(t, []byte("dbrx-instruct_seed-13"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "run_id", msg.Headers[0].Key)

	var got models.EvaluationRecord
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, 0.25, got.Performance.Accuracy)
}

func TestProducerConfig(t *testing.T) {
	cm := producerConfig(config.KafkaConfig{Broker: "broker:9092"})

	v, err := cm.Get("bootstrap.servers", nil)
	require.NoError(t, err)
	assert.Equal(t, "broker:9092", v)

	v, err = cm.Get("acks", nil)
	require.NoError(t, err)
	assert.Equal(t, "all", v)
}
