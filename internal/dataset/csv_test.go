package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := ",date,text,label,predicted_label\n" +
		"0,2020-01-02,stocks up,Rise,Rise\n" +
		"1,2020-01-03,\"flat, quiet day\",Neutral,Fall\n"

	table, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"Rise", "Neutral"}, table.Labels)
	assert.Equal(t, []string{"Rise", "Fall"}, table.Predictions)

	text, ok := table.Column("text")
	require.True(t, ok)
	assert.Equal(t, []string{"stocks up", "flat, quiet day"}, text)

	_, ok = table.Column("")
	assert.False(t, ok)
}

func TestReadCSVMissingColumn(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "no prediction", in: "label\nRise\n"},
		{name: "no label", in: "predicted_label\nRise\n"},
		{name: "empty", in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in))
			require.ErrorIs(t, err, ErrMissingColumn)
		})
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("label,predicted_label\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "df_model.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufefflabel,predicted_label\nFall,Fall\n"), 0o644))

	table, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fall"}, table.Labels)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilter(t *testing.T) {
	in := "label,predicted_label,text\nRise,Rise,a\nbad,Rise,b\nFall,Neutral,c\n"
	table, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	kept := table.Filter(func(label, _ string) bool { return label != "bad" })
	assert.Equal(t, []string{"Rise", "Fall"}, kept.Labels)
	assert.Equal(t, []string{"Rise", "Neutral"}, kept.Predictions)
	text, _ := kept.Column("text")
	assert.Equal(t, []string{"a", "c"}, text)
}

func TestWithPredictions(t *testing.T) {
	table, err := NewTable([]string{"Rise", "Fall"}, []string{"Rise", "Rise"})
	require.NoError(t, err)

	_, err = table.WithPredictions([]string{"Rise"})
	require.ErrorIs(t, err, ErrLengthMismatch)

	swapped, err := table.WithPredictions([]string{"Fall", "Fall"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fall", "Fall"}, swapped.Predictions)
	assert.Equal(t, table.Labels, swapped.Labels)
}
