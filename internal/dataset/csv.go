// Package dataset loads result tables of (label, predicted_label) pairs.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	LabelColumn     = "label"
	PredictedColumn = "predicted_label"
)

var (
	ErrMissingColumn  = errors.New("dataset: missing required column")
	ErrLengthMismatch = errors.New("dataset: label and prediction counts differ")
)

// Table is an in-memory result table. Labels and Predictions are aligned
// by row; every other named column is kept and addressable by name.
type Table struct {
	Labels      []string
	Predictions []string
	columns     map[string][]string
}

// NewTable builds a table from aligned label and prediction slices.
func NewTable(labels, predictions []string) (*Table, error) {
	if len(labels) != len(predictions) {
		return nil, fmt.Errorf("%w: %d labels, %d predictions",
			ErrLengthMismatch, len(labels), len(predictions))
	}
	return &Table{
		Labels:      labels,
		Predictions: predictions,
		columns:     map[string][]string{},
	}, nil
}

func (t *Table) Len() int {
	return len(t.Labels)
}

// Column returns an extra column by header name.
func (t *Table) Column(name string) ([]string, bool) {
	switch name {
	case LabelColumn:
		return t.Labels, true
	case PredictedColumn:
		return t.Predictions, true
	}
	col, ok := t.columns[name]
	return col, ok
}

// WithPredictions returns a copy of t scored against other predictions.
func (t *Table) WithPredictions(predictions []string) (*Table, error) {
	out, err := NewTable(t.Labels, predictions)
	if err != nil {
		return nil, err
	}
	out.columns = t.columns
	return out, nil
}

// Filter returns the rows for which keep returns true, extra columns included.
func (t *Table) Filter(keep func(label, predicted string) bool) *Table {
	out := &Table{columns: make(map[string][]string, len(t.columns))}
	var kept []int
	for i := range t.Labels {
		if keep(t.Labels[i], t.Predictions[i]) {
			kept = append(kept, i)
			out.Labels = append(out.Labels, t.Labels[i])
			out.Predictions = append(out.Predictions, t.Predictions[i])
		}
	}
	for name, col := range t.columns {
		filtered := make([]string, 0, len(kept))
		for _, i := range kept {
			filtered = append(filtered, col[i])
		}
		out.columns[name] = filtered
	}
	return out
}

// LoadCSV reads a result table from path.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result table: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	slog.Debug("[Dataset] Loaded result table",
		slog.String("path", path),
		slog.Int("rows", t.Len()))
	return t, nil
}

// ReadCSV parses a result table with a header row. Unnamed columns, such as
// a written-out pandas index, are skipped.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s (empty file)", ErrMissingColumn, LabelColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, required := range []string{LabelColumn, PredictedColumn} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	t := &Table{columns: make(map[string][]string, len(index)-2)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", t.Len()+1, err)
		}

		for name, i := range index {
			switch name {
			case LabelColumn:
				t.Labels = append(t.Labels, record[i])
			case PredictedColumn:
				t.Predictions = append(t.Predictions, record[i])
			default:
				t.columns[name] = append(t.columns[name], record[i])
			}
		}
	}
	return t, nil
}
