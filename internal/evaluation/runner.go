// Package evaluation runs a single experiment evaluation end to end:
// resolve the result file, score it, print it and publish it.
package evaluation

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spacesedan/trendeval/internal/dataset"
	"github.com/spacesedan/trendeval/internal/experts"
	"github.com/spacesedan/trendeval/internal/metrics"
	"github.com/spacesedan/trendeval/internal/models"
	"github.com/spacesedan/trendeval/internal/publish"
	"github.com/spacesedan/trendeval/internal/report"
	"github.com/spacesedan/trendeval/internal/sentiment"
)

// Options selects the experiment and how it is scored.
type Options struct {
	ModelName      string
	ModelVariant   string
	Seed           int
	Average        string
	ExperimentsDir string

	LabelPolicy metrics.LabelPolicy
	Fallback    metrics.FallbackPolicy

	// BaselineColumn, when set, scores VADER predictions derived from this
	// column instead of predicted_label.
	BaselineColumn    string
	BaselineThreshold float64

	Confusion bool
}

func DefaultOptions() Options {
	return Options{
		ModelName:         "Meta-Llama-3",
		ModelVariant:      "8B-Instruct",
		Seed:              0,
		Average:           string(metrics.AverageWeighted),
		ExperimentsDir:    experts.DefaultExperimentsPath,
		LabelPolicy:       metrics.LabelPolicyIgnore,
		Fallback:          metrics.FallbackZero,
		BaselineThreshold: sentiment.DefaultThreshold,
	}
}

type Runner struct {
	printer   *report.Printer
	publisher *publish.Publisher
	logger    *slog.Logger
}

// NewRunner prints to out. publisher may be nil.
func NewRunner(out io.Writer, publisher *publish.Publisher) *Runner {
	return &Runner{
		printer:   report.NewPrinter(out),
		publisher: publisher,
		logger:    slog.Default(),
	}
}

// Run scores the base model's own predictions for one seed. Adapter and
// aggregator result files are never scored here.
func (r *Runner) Run(ctx context.Context, opts Options) (metrics.Result, error) {
	if err := experts.ValidateSeed(opts.ModelName, opts.Seed); err != nil {
		return metrics.Result{}, err
	}
	if !experts.KnownSeed(opts.Seed) {
		r.logger.Warn("[Evaluation] Seed is not one the experiments were run with",
			slog.Int("seed", opts.Seed),
			slog.Any("seeds", experts.Seeds))
	}
	if !experts.KnownModel(opts.ModelName, opts.ModelVariant) {
		r.logger.Warn("[Evaluation] Model is not one of the evaluated LLMs",
			slog.String("model", experts.ChatLMID(opts.ModelName, opts.ModelVariant)))
	}

	experimentID := experts.ExperimentID(opts.ModelName, opts.ModelVariant, opts.Seed)
	path := experts.ResultPath(opts.ExperimentsDir, opts.ModelName, opts.ModelVariant, opts.Seed)
	r.logger.Info("[Evaluation] Scoring result file",
		slog.String("experiment", experimentID),
		slog.String("path", path),
		slog.String("average", opts.Average))

	table, err := dataset.LoadCSV(path)
	if err != nil {
		return metrics.Result{}, err
	}
	if opts.BaselineColumn != "" {
		if table, err = r.withBaseline(table, opts); err != nil {
			return metrics.Result{}, err
		}
	}

	res, err := metrics.Compute(table,
		metrics.WithAverage(metrics.Average(opts.Average)),
		metrics.WithLabelPolicy(opts.LabelPolicy),
		metrics.WithFallback(opts.Fallback),
		metrics.WithReport(true),
		metrics.WithLogger(r.logger),
	)
	if err != nil {
		return metrics.Result{}, fmt.Errorf("score %s: %w", experimentID, err)
	}

	if res.Report != nil {
		for _, m := range res.Report.SupportMismatches() {
			r.logger.Warn("[Evaluation] Label support differs from the published test split",
				slog.String("label", string(m.Label)),
				slog.Int("observed", m.Observed),
				slog.Int("expected", m.Expected))
		}
	}

	runLabel := experts.RunLabel(opts.ModelName, opts.ModelVariant, opts.Seed)
	if err := r.print(runLabel, opts, res); err != nil {
		return metrics.Result{}, err
	}

	if r.publisher != nil && r.publisher.Len() > 0 {
		rec := models.NewEvaluationRecord(experimentID)
		rec.ModelName = opts.ModelName
		rec.ModelVariant = opts.ModelVariant
		rec.Seed = opts.Seed
		rec.Average = opts.Average
		rec.Rows = res.Rows
		rec.Performance = res.Performance
		if failed := r.publisher.Publish(ctx, rec); failed > 0 {
			r.logger.Warn("[Evaluation] Some result sinks did not receive the evaluation",
				slog.Int("failed", failed))
		}
	}
	return res, nil
}

func (r *Runner) withBaseline(table *dataset.Table, opts Options) (*dataset.Table, error) {
	texts, ok := table.Column(opts.BaselineColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %s", dataset.ErrMissingColumn, opts.BaselineColumn)
	}
	r.logger.Info("[Evaluation] Scoring VADER baseline instead of model predictions",
		slog.String("column", opts.BaselineColumn),
		slog.Float64("threshold", opts.BaselineThreshold))
	return table.WithPredictions(sentiment.Baseline(texts, opts.BaselineThreshold))
}

func (r *Runner) print(runLabel string, opts Options, res metrics.Result) error {
	if err := r.printer.PerformanceTable(res.Performance); err != nil {
		return err
	}
	if opts.Confusion {
		if err := r.printer.Confusion(res.Confusion); err != nil {
			return err
		}
	}
	return r.printer.Summary(opts.Average, runLabel, res.Report, res.Performance)
}
