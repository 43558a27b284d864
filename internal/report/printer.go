// Package report renders evaluation results for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tidwall/pretty"

	"github.com/spacesedan/trendeval/internal/metrics"
	"github.com/spacesedan/trendeval/internal/models"
)

const ruleWidth = 50

var dictOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: true,
}

type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PerformanceTable writes the four summary metrics as a two-column table.
func (p *Printer) PerformanceTable(perf models.Performance) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	t.AppendHeader(table.Row{"Metric", "Value"})

	values := perf.AsMap()
	for _, name := range models.MetricNames {
		t.AppendRow(table.Row{name, values[name]})
	}

	_, err := fmt.Fprintln(p.w, t.Render())
	return err
}

// Confusion writes the confusion matrix with truth rows and predicted columns.
func (p *Printer) Confusion(m metrics.ConfusionMatrix) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	t.SetTitle("Confusion matrix (rows = label, columns = predicted_label)")

	header := table.Row{""}
	for _, l := range models.Labels {
		header = append(header, string(l))
	}
	t.AppendHeader(header)
	for i, l := range models.Labels {
		row := table.Row{string(l)}
		for j := range models.Labels {
			row = append(row, m[i][j])
		}
		t.AppendRow(row)
	}

	_, err := fmt.Fprintln(p.w, t.Render())
	return err
}

// Summary writes the banner, the classification report and the summary
// metrics as sorted, indented dictionaries.
func (p *Printer) Summary(average, runLabel string, rep *models.ClassificationReport, perf models.Performance) error {
	var reportDict any
	if rep != nil {
		reportDict = rep.AsMap()
	}

	reportJSON, err := Dict(reportDict)
	if err != nil {
		return fmt.Errorf("render classification report: %w", err)
	}
	perfJSON, err := Dict(perf.AsMap())
	if err != nil {
		return fmt.Errorf("render performance: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	fmt.Fprintf(&b, "Performance Report (average = %s): \n%s\n", average, runLabel)
	b.Write(reportJSON)
	b.Write(perfJSON)
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	_, err = io.WriteString(p.w, b.String())
	return err
}

// Dict renders v as indented JSON with sorted keys.
func Dict(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(raw, dictOptions), nil
}
