package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/trendeval/config"
	"github.com/spacesedan/trendeval/internal/models"
)

type fakeSink struct {
	name      string
	err       error
	published []models.EvaluationRecord
	closed    bool
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Publish(_ context.Context, rec models.EvaluationRecord) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, rec)
	return nil
}

func (f *fakeSink) Close() { f.closed = true }

func TestPublish(t *testing.T) {
	ok := &fakeSink{name: "ok"}
	broken := &fakeSink{name: "broken", err: errors.New("unreachable")}
	p := NewPublisher(broken, ok)

	rec := models.NewEvaluationRecord("dbrx-instruct_seed-0")
	assert.Equal(t, 1, p.Publish(context.Background(), rec))
	require.Len(t, ok.published, 1)
	assert.Equal(t, rec.RunID, ok.published[0].RunID)

	p.Close()
	assert.True(t, ok.closed)
	assert.True(t, broken.closed)
}

func TestValidateSinks(t *testing.T) {
	require.NoError(t, ValidateSinks(nil))
	require.NoError(t, ValidateSinks([]string{"valkey", "dynamodb", "kafka"}))
	require.Error(t, ValidateSinks([]string{"s3"}))
}

func TestOpenSkipsUnreachableSinks(t *testing.T) {
	p, err := Open(context.Background(), config.Config{}, []string{SinkValkey})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())

	_, err = Open(context.Background(), config.Config{}, []string{"s3"})
	require.Error(t, err)
}
