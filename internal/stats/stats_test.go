package stats

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/healthprep-cli/internal/table"
)

func TestDescribeOneToFour(t *testing.T) {
	s := Describe([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, 1.75, s.Q1, 1e-12)
	assert.InDelta(t, 2.5, s.Q2, 1e-12)
	assert.InDelta(t, 3.25, s.Q3, 1e-12)
}

func TestDescribeEmptyAndSingle(t *testing.T) {
	s := Describe(nil)
	assert.Equal(t, 0, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Q3))

	one := Describe([]float64{7})
	assert.Equal(t, 7.0, one.Median)
	assert.Equal(t, 7.0, one.Q1)
	assert.True(t, math.IsNaN(one.Std))
}

func TestDescribeDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Describe(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 200.0, Median([]float64{300, 100, 200}))
	assert.Equal(t, 150.0, Median([]float64{100, 200}))
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestSummarizeSkipsMissingAndNonNumeric(t *testing.T) {
	tb := table.Empty()
	require.NoError(t, tb.AddColumn(&table.Column{Name: "Age", Kind: table.Numeric,
		Cells: []table.Cell{table.Num(1), table.Missing(), table.Num(2), table.Num(3), table.Num(4)}}))
	require.NoError(t, tb.AddColumn(&table.Column{Name: "Gender", Kind: table.Text,
		Cells: []table.Cell{table.Str("male"), table.Str("female"), table.Missing(), table.Str("male"), table.Str("male")}}))

	out := Summarize(tb)
	require.Len(t, out, 1)
	assert.Equal(t, "Age", out[0].Column)
	assert.Equal(t, 4, out[0].Count)
	assert.InDelta(t, 2.5, out[0].Mean, 1e-12)

	var buf bytes.Buffer
	Fprint(&buf, out)
	text := buf.String()
	assert.Contains(t, text, "Summary Statistics for 'Age':")
	assert.Contains(t, text, "Mean: 2.5")
	assert.Contains(t, text, "Min: 1, Max: 4")
	assert.Contains(t, text, "0.25    1.75")
	assert.Contains(t, text, "0.75    3.25")
}
