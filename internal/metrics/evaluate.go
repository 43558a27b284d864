// Package metrics scores trend predictions against ground truth over the
// fixed Fall/Neutral/Rise label set.
package metrics

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spacesedan/trendeval/internal/dataset"
	"github.com/spacesedan/trendeval/internal/models"
)

var (
	ErrNoInput         = errors.New("metrics: must provide a result table or a csv file path")
	ErrEmptyTable      = errors.New("metrics: result table has no rows")
	ErrUnknownAverage  = errors.New("metrics: unknown averaging mode")
	ErrOutOfVocabulary = errors.New("metrics: label outside the label set")
)

// Result is the outcome of scoring one result table.
type Result struct {
	Performance models.Performance
	Confusion   ConfusionMatrix
	Rows        int

	// Report is nil when the caller disabled it.
	Report *models.ClassificationReport

	// OutOfSet counts rows whose label or prediction is not in the label set.
	OutOfSet int
}

// Evaluate scores table, loading it from csvPath when table is nil.
func Evaluate(csvPath string, table *dataset.Table, opts ...Option) (Result, error) {
	if table == nil {
		if csvPath == "" {
			return Result{}, ErrNoInput
		}
		loaded, err := dataset.LoadCSV(csvPath)
		if err != nil {
			return Result{}, err
		}
		table = loaded
	}
	return Compute(table, opts...)
}

// Compute scores an in-memory table.
func Compute(table *dataset.Table, opts ...Option) (Result, error) {
	if table == nil {
		return Result{}, ErrNoInput
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	outOfSet := countOutOfSet(table)
	if outOfSet > 0 {
		switch cfg.labelPolicy {
		case LabelPolicyStrict:
			return Result{}, fmt.Errorf("%w: %d of %d rows", ErrOutOfVocabulary, outOfSet, table.Len())
		case LabelPolicyDrop:
			cfg.logger.Warn("[Metrics] Dropping rows with labels outside the label set",
				slog.Int("dropped", outOfSet),
				slog.Int("rows", table.Len()))
			table = table.Filter(func(label, predicted string) bool {
				return models.Label(label).Valid() && models.Label(predicted).Valid()
			})
		default:
			cfg.logger.Warn("[Metrics] Rows with labels outside the label set are not reported as classes",
				slog.Int("out_of_set", outOfSet),
				slog.Int("rows", table.Len()))
		}
	}

	counts := countClasses(table.Labels, table.Predictions)
	res := Result{
		Rows:      table.Len(),
		OutOfSet:  outOfSet,
		Confusion: confusion(table.Labels, table.Predictions),
	}

	perf, err := summarize(counts, cfg.average)
	if err != nil {
		if cfg.fallback == FallbackFail {
			return Result{}, err
		}
		cfg.logger.Error("[Metrics] Error calculating metrics, reporting zeros",
			slog.String("error", err.Error()))
		perf = models.Performance{}
	}
	res.Performance = perf

	if cfg.withReport {
		res.Report = counts.report()
	}
	return res, nil
}

func summarize(c classCounts, average Average) (models.Performance, error) {
	if c.rows == 0 {
		return models.Performance{}, ErrEmptyTable
	}
	avg, err := c.average(average)
	if err != nil {
		return models.Performance{}, err
	}
	return models.Performance{
		F1:        avg.F1,
		Accuracy:  c.accuracy(),
		Precision: avg.Precision,
		Recall:    avg.Recall,
	}, nil
}

func countOutOfSet(t *dataset.Table) int {
	n := 0
	for i := range t.Labels {
		if !models.Label(t.Labels[i]).Valid() || !models.Label(t.Predictions[i]).Valid() {
			n++
		}
	}
	return n
}
