package metrics

import (
	"fmt"
	"log/slog"
)

// Average selects how per-class scores are combined.
type Average string

const (
	AverageWeighted Average = "weighted"
	AverageMicro    Average = "micro"
	AverageMacro    Average = "macro"
)

// LabelPolicy decides what happens to rows whose label or prediction is
// outside the label set.
type LabelPolicy string

const (
	// LabelPolicyIgnore keeps every row. Out-of-set values still count
	// against accuracy and as false positives/negatives of in-set classes,
	// but are never reported as a class of their own.
	LabelPolicyIgnore LabelPolicy = "ignore"
	// LabelPolicyDrop removes offending rows before scoring.
	LabelPolicyDrop LabelPolicy = "drop"
	// LabelPolicyStrict fails the evaluation.
	LabelPolicyStrict LabelPolicy = "strict"
)

// FallbackPolicy decides what happens when the summary cannot be computed.
type FallbackPolicy string

const (
	// FallbackZero logs the error and reports zero for every metric.
	FallbackZero FallbackPolicy = "zero"
	// FallbackFail returns the error.
	FallbackFail FallbackPolicy = "fail"
)

func ParseLabelPolicy(s string) (LabelPolicy, error) {
	switch p := LabelPolicy(s); p {
	case LabelPolicyIgnore, LabelPolicyDrop, LabelPolicyStrict:
		return p, nil
	}
	return "", fmt.Errorf("unknown label policy %q (want ignore, drop or strict)", s)
}

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case FallbackZero, FallbackFail:
		return p, nil
	}
	return "", fmt.Errorf("unknown fallback policy %q (want zero or fail)", s)
}

// Option configures an evaluation.
type Option func(*config)

type config struct {
	average     Average
	labelPolicy LabelPolicy
	fallback    FallbackPolicy
	withReport  bool
	logger      *slog.Logger
}

func defaultConfig() config {
	return config{
		average:     AverageWeighted,
		labelPolicy: LabelPolicyIgnore,
		fallback:    FallbackZero,
		withReport:  true,
		logger:      slog.Default(),
	}
}

// WithAverage sets the averaging mode (default: weighted). An unknown mode
// is treated as a computation error and goes through the fallback policy.
func WithAverage(a Average) Option {
	return func(c *config) {
		if a != "" {
			c.average = a
		}
	}
}

// WithLabelPolicy sets the out-of-set label policy (default: ignore).
func WithLabelPolicy(p LabelPolicy) Option {
	return func(c *config) {
		if p != "" {
			c.labelPolicy = p
		}
	}
}

// WithFallback sets the fallback policy (default: zero).
func WithFallback(p FallbackPolicy) Option {
	return func(c *config) {
		if p != "" {
			c.fallback = p
		}
	}
}

// WithReport toggles the per-class classification report (default: on).
func WithReport(enabled bool) Option {
	return func(c *config) {
		c.withReport = enabled
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
