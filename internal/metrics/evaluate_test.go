package metrics

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/trendeval/internal/dataset"
	"github.com/spacesedan/trendeval/internal/models"
)

const delta = 1e-6

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func table(t *testing.T, labels, predictions []string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(labels, predictions)
	require.NoError(t, err)
	return tbl
}

func TestComputePerfect(t *testing.T) {
	labels := []string{"Fall", "Neutral", "Rise", "Rise", "Neutral"}
	for _, avg := range []Average{AverageWeighted, AverageMicro, AverageMacro} {
		t.Run(string(avg), func(t *testing.T) {
			res, err := Compute(table(t, labels, labels), WithAverage(avg), quiet)
			require.NoError(t, err)
			assert.Equal(t, models.Performance{F1: 1, Accuracy: 1, Precision: 1, Recall: 1}, res.Performance)
		})
	}
}

func TestComputeDisjoint(t *testing.T) {
	labels := []string{"Fall", "Fall", "Fall"}
	preds := []string{"Rise", "Rise", "Rise"}
	for _, avg := range []Average{AverageWeighted, AverageMicro, AverageMacro} {
		t.Run(string(avg), func(t *testing.T) {
			res, err := Compute(table(t, labels, preds), WithAverage(avg), quiet)
			require.NoError(t, err)
			assert.Equal(t, models.Performance{}, res.Performance)
		})
	}
}

func TestComputeAverages(t *testing.T) {
	labels := []string{"Fall", "Fall", "Neutral", "Neutral", "Neutral", "Rise", "Rise"}
	preds := []string{"Fall", "Neutral", "Neutral", "Neutral", "Neutral", "Rise", "Fall"}

	tests := []struct {
		average   Average
		precision float64
		recall    float64
		f1        float64
	}{
		{average: AverageWeighted, precision: 0.75, recall: 5.0 / 7, f1: (1 + 3*6.0/7 + 2*2.0/3) / 7},
		{average: AverageMacro, precision: (0.5 + 0.75 + 1) / 3, recall: (0.5 + 1 + 0.5) / 3, f1: (0.5 + 6.0/7 + 2.0/3) / 3},
		{average: AverageMicro, precision: 5.0 / 7, recall: 5.0 / 7, f1: 5.0 / 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.average), func(t *testing.T) {
			res, err := Compute(table(t, labels, preds), WithAverage(tt.average), quiet)
			require.NoError(t, err)
			assert.InDelta(t, 5.0/7, res.Performance.Accuracy, delta)
			assert.InDelta(t, tt.precision, res.Performance.Precision, delta)
			assert.InDelta(t, tt.recall, res.Performance.Recall, delta)
			assert.InDelta(t, tt.f1, res.Performance.F1, delta)
		})
	}
}

func TestComputeReport(t *testing.T) {
	labels := []string{"Fall", "Fall", "Neutral", "Neutral", "Neutral", "Rise", "Rise"}
	preds := []string{"Fall", "Neutral", "Neutral", "Neutral", "Neutral", "Rise", "Fall"}

	res, err := Compute(table(t, labels, preds), quiet)
	require.NoError(t, err)
	require.NotNil(t, res.Report)

	neutral := res.Report.Classes[models.LabelNeutral]
	assert.InDelta(t, 0.75, neutral.Precision, delta)
	assert.InDelta(t, 1.0, neutral.Recall, delta)
	assert.InDelta(t, 6.0/7, neutral.F1, delta)
	assert.Equal(t, 3, neutral.Support)

	require.NotNil(t, res.Report.Accuracy)
	assert.Nil(t, res.Report.MicroAvg)
	assert.InDelta(t, 5.0/7, *res.Report.Accuracy, delta)
	assert.Equal(t, 7, res.Report.WeightedAvg.Support)

	assert.Equal(t, ConfusionMatrix{
		{1, 1, 0},
		{0, 3, 0},
		{1, 0, 1},
	}, res.Confusion)

	res, err = Compute(table(t, labels, preds), WithReport(false), quiet)
	require.NoError(t, err)
	assert.Nil(t, res.Report)
}

func TestComputeLabelPolicies(t *testing.T) {
	labels := []string{"Rise", "unknown"}
	preds := []string{"Rise", "Rise"}

	t.Run("ignore", func(t *testing.T) {
		res, err := Compute(table(t, labels, preds), quiet)
		require.NoError(t, err)
		assert.Equal(t, 1, res.OutOfSet)
		assert.InDelta(t, 0.5, res.Performance.Accuracy, delta)
		assert.InDelta(t, 0.5, res.Performance.Precision, delta)
		assert.InDelta(t, 1.0, res.Performance.Recall, delta)
		assert.InDelta(t, 2.0/3, res.Performance.F1, delta)

		require.NotNil(t, res.Report.MicroAvg)
		assert.Nil(t, res.Report.Accuracy)
		assert.NotContains(t, res.Report.AsMap(), "unknown")
	})

	t.Run("drop", func(t *testing.T) {
		res, err := Compute(table(t, labels, preds), WithLabelPolicy(LabelPolicyDrop), quiet)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Rows)
		assert.Equal(t, models.Performance{F1: 1, Accuracy: 1, Precision: 1, Recall: 1}, res.Performance)
		assert.NotNil(t, res.Report.Accuracy)
	})

	t.Run("strict", func(t *testing.T) {
		_, err := Compute(table(t, labels, preds), WithLabelPolicy(LabelPolicyStrict), quiet)
		require.ErrorIs(t, err, ErrOutOfVocabulary)
	})
}

func TestComputeFallback(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		preds   []string
		average Average
		wantErr error
	}{
		{name: "empty table", wantErr: ErrEmptyTable},
		{name: "unknown average", labels: []string{"Rise"}, preds: []string{"Rise"}, average: "samples", wantErr: ErrUnknownAverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table(t, tt.labels, tt.preds)

			res, err := Compute(tbl, WithAverage(tt.average), quiet)
			require.NoError(t, err)
			assert.Equal(t, models.Performance{}, res.Performance)
			assert.Len(t, res.Performance.AsMap(), 4)

			_, err = Compute(tbl, WithAverage(tt.average), WithFallback(FallbackFail), quiet)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEvaluate(t *testing.T) {
	_, err := Evaluate("", nil, quiet)
	require.ErrorIs(t, err, ErrNoInput)

	path := filepath.Join(t.TempDir(), "df_Meta-Llama-3-8B-Instruct.csv")
	require.NoError(t, os.WriteFile(path, []byte("label,predicted_label\nRise,Rise\nFall,Fall\n"), 0o644))

	res, err := Evaluate(path, nil, quiet)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.InDelta(t, 1.0, res.Performance.F1, delta)

	tbl := table(t, []string{"Fall"}, []string{"Rise"})
	res, err = Evaluate(path, tbl, quiet)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows, "an in-memory table takes precedence over the path")
}

func TestParsePolicies(t *testing.T) {
	p, err := ParseLabelPolicy("drop")
	require.NoError(t, err)
	assert.Equal(t, LabelPolicyDrop, p)
	_, err = ParseLabelPolicy("loose")
	require.Error(t, err)

	f, err := ParseFallbackPolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, FallbackFail, f)
	_, err = ParseFallbackPolicy("retry")
	require.Error(t, err)
}
