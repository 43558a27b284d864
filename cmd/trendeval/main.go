package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/spacesedan/trendeval/config"
	"github.com/spacesedan/trendeval/internal/evaluation"
	"github.com/spacesedan/trendeval/internal/experts"
	"github.com/spacesedan/trendeval/internal/logging"
	"github.com/spacesedan/trendeval/internal/metrics"
	"github.com/spacesedan/trendeval/internal/publish"
)

// openPublisher connects the result sinks named on the command line.
var openPublisher = publish.Open

func main() {
	env := config.AppEnv()
	config.LoadEnv(env)
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd(cfg, os.Stdout).ExecuteContext(ctx); err != nil {
		slog.Error("[Main] Evaluation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config, out io.Writer) *cobra.Command {
	opts := evaluation.DefaultOptions()
	opts.ExperimentsDir = cfg.ExperimentsDir

	var (
		labelPolicy = string(opts.LabelPolicy)
		fallback    = string(opts.Fallback)
		sinks       = cfg.ResultSinks
	)

	cmd := &cobra.Command{
		Use:   "trendeval",
		Short: "Report accuracy, precision, recall and F1 of a trend prediction run",
		Long: "trendeval scores the predictions of one model/seed run against the Fall/Neutral/Rise\n" +
			"ground truth stored in <experiments-dir>/<model>-<variant>_seed-<seed>/df_<model>-<variant>.csv\n" +
			"and prints a summary table followed by the per-class classification report.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// No sink may be dialed for a run the seed rule rejects.
			if err := experts.ValidateSeed(opts.ModelName, opts.Seed); err != nil {
				return err
			}

			var err error
			if opts.LabelPolicy, err = metrics.ParseLabelPolicy(labelPolicy); err != nil {
				return err
			}
			if opts.Fallback, err = metrics.ParseFallbackPolicy(fallback); err != nil {
				return err
			}

			publisher, err := openPublisher(cmd.Context(), cfg, sinks)
			if err != nil {
				return err
			}
			defer publisher.Close()

			_, err = evaluation.NewRunner(out, publisher).Run(cmd.Context(), opts)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.ModelName, "model-name", opts.ModelName, "model family, e.g. Meta-Llama-3, Llama-2, OpenAI")
	flags.StringVar(&opts.ModelVariant, "model-variant", opts.ModelVariant, "model variant, e.g. 8B-Instruct, 7b-chat-hf, gpt-4o")
	flags.IntVar(&opts.Seed, "seed", opts.Seed, "experiment seed, one of 0, 13, 42")
	flags.StringVar(&opts.Average, "average", opts.Average, "averaging mode: weighted, micro or macro")
	flags.StringVar(&opts.ExperimentsDir, "experiments-dir", opts.ExperimentsDir, "directory holding the experiment runs (env EXPERIMENTS_DIR)")
	flags.StringVar(&labelPolicy, "label-policy", labelPolicy, "rows with labels outside Fall/Neutral/Rise: ignore, drop or strict")
	flags.StringVar(&fallback, "fallback", fallback, "when metrics cannot be computed: zero or fail")
	flags.StringVar(&opts.BaselineColumn, "baseline-column", "", "score a VADER baseline computed from this text column instead of predicted_label")
	flags.Float64Var(&opts.BaselineThreshold, "baseline-threshold", opts.BaselineThreshold, "VADER compound score needed to predict Rise or Fall")
	flags.BoolVar(&opts.Confusion, "confusion", false, "also print the confusion matrix")
	flags.StringSliceVar(&sinks, "publish", sinks, "publish the summary to result sinks: valkey, dynamodb, kafka (env RESULT_SINKS)")

	return cmd
}
