package models

import (
	"time"

	"github.com/google/uuid"
)

// Label is one of the three trend categories a prediction may take.
type Label string

const (
	LabelFall    Label = "Fall"
	LabelNeutral Label = "Neutral"
	LabelRise    Label = "Rise"
)

// Labels is the ordered label set. Index order is the numeric encoding.
var Labels = []Label{LabelFall, LabelNeutral, LabelRise}

// LabelSupport is the number of ground truth rows per label in the
// published test split.
var LabelSupport = map[Label]int{
	LabelFall:    73,
	LabelNeutral: 143,
	LabelRise:    101,
}

// Index returns the numeric encoding of l, or -1 when l is not in Labels.
func (l Label) Index() int {
	for i, known := range Labels {
		if known == l {
			return i
		}
	}
	return -1
}

func (l Label) Valid() bool {
	return l.Index() >= 0
}

const (
	MetricF1        = "F1 Score"
	MetricAccuracy  = "Accuracy"
	MetricPrecision = "Precision"
	MetricRecall    = "Recall"
)

// MetricNames lists the summary keys in print order.
var MetricNames = []string{MetricF1, MetricAccuracy, MetricPrecision, MetricRecall}

// Performance is the four-metric summary of a single evaluation.
type Performance struct {
	F1        float64 `json:"F1 Score" dynamodbav:"f1_score"`
	Accuracy  float64 `json:"Accuracy" dynamodbav:"accuracy"`
	Precision float64 `json:"Precision" dynamodbav:"precision"`
	Recall    float64 `json:"Recall" dynamodbav:"recall"`
}

// AsMap always returns exactly the four metric keys.
func (p Performance) AsMap() map[string]float64 {
	return map[string]float64{
		MetricF1:        p.F1,
		MetricAccuracy:  p.Accuracy,
		MetricPrecision: p.Precision,
		MetricRecall:    p.Recall,
	}
}

// ClassScores holds one row of a classification report.
type ClassScores struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// ClassificationReport is the per-class breakdown of an evaluation.
// Exactly one of Accuracy and MicroAvg is set.
type ClassificationReport struct {
	Classes     map[Label]ClassScores
	Accuracy    *float64
	MicroAvg    *ClassScores
	MacroAvg    ClassScores
	WeightedAvg ClassScores
}

// AsMap flattens the report into the nested key layout used for printing
// and publishing.
func (r ClassificationReport) AsMap() map[string]any {
	out := make(map[string]any, len(r.Classes)+3)
	for _, l := range Labels {
		if s, ok := r.Classes[l]; ok {
			out[string(l)] = s
		}
	}
	if r.Accuracy != nil {
		out["accuracy"] = *r.Accuracy
	}
	if r.MicroAvg != nil {
		out["micro avg"] = *r.MicroAvg
	}
	out["macro avg"] = r.MacroAvg
	out["weighted avg"] = r.WeightedAvg
	return out
}

// SupportMismatch is a label whose observed support differs from the
// published test split.
type SupportMismatch struct {
	Label    Label
	Observed int
	Expected int
}

// SupportMismatches compares per-class support against LabelSupport.
func (r ClassificationReport) SupportMismatches() []SupportMismatch {
	var out []SupportMismatch
	for _, l := range Labels {
		observed := r.Classes[l].Support
		if expected := LabelSupport[l]; observed != expected {
			out = append(out, SupportMismatch{Label: l, Observed: observed, Expected: expected})
		}
	}
	return out
}

// EvaluationRecord is what gets published to result sinks after a run.
type EvaluationRecord struct {
	RunID        string      `json:"run_id" dynamodbav:"run_id"`
	ExperimentID string      `json:"experiment_id" dynamodbav:"experiment_id"`
	ModelName    string      `json:"model_name" dynamodbav:"model_name"`
	ModelVariant string      `json:"model_variant" dynamodbav:"model_variant"`
	Seed         int         `json:"seed" dynamodbav:"seed"`
	Average      string      `json:"average" dynamodbav:"average"`
	Rows         int         `json:"rows" dynamodbav:"rows"`
	Performance  Performance `json:"performance" dynamodbav:"performance"`
	CreatedAt    time.Time   `json:"created_at" dynamodbav:"created_at,unixtime"`
}

func NewEvaluationRecord(experimentID string) EvaluationRecord {
	return EvaluationRecord{
		RunID:        uuid.NewString(),
		ExperimentID: experimentID,
		CreatedAt:    time.Now().UTC(),
	}
}
