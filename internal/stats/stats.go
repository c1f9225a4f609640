package stats

import (
	"fmt"
	"io"
	"math"
	"sort"

	moremath "github.com/aclements/go-moremath/stats"
	"github.com/fatih/color"

	"github.com/KaramelBytes/healthprep-cli/internal/table"
)

// Summary holds descriptive statistics over the present values of a column.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Q2     float64 `json:"q2" yaml:"q2"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Std    float64 `json:"std" yaml:"std"`
}

// ColumnSummary is a Summary for a named column.
type ColumnSummary struct {
	Column string `json:"column" yaml:"column"`
	Summary
}

// Describe computes a Summary. With no values every statistic is NaN.
// Quartiles interpolate linearly between order statistics.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Median: nan, Min: nan, Max: nan, Q1: nan, Q2: nan, Q3: nan, Std: nan}
	}
	s := moremath.Sample{Xs: append([]float64(nil), values...)}
	s.Sort()
	lo, hi := s.Bounds()
	out := Summary{
		Count: len(s.Xs),
		Mean:  s.Mean(),
		Min:   lo,
		Max:   hi,
		Q1:    Quantile(s.Xs, 0.25),
		Q2:    Quantile(s.Xs, 0.5),
		Q3:    Quantile(s.Xs, 0.75),
		Std:   math.NaN(),
	}
	out.Median = out.Q2
	if len(s.Xs) > 1 {
		out.Std = s.StdDev()
	}
	return out
}

// Median returns the middle value of values (NaN when empty).
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	return Quantile(cp, 0.5)
}

// Quantile returns the q-th quantile of an ascending slice using linear
// interpolation between the closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Values returns the present numbers of a column, skipping missing cells.
func Values(c *table.Column) []float64 {
	out := make([]float64, 0, len(c.Cells))
	for _, v := range c.Cells {
		if f, ok := v.Float(); ok && !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

// Summarize describes every numeric column in table order.
func Summarize(t *table.Table) []ColumnSummary {
	var out []ColumnSummary
	for _, c := range t.Columns() {
		if c.Kind != table.Numeric {
			continue
		}
		out = append(out, ColumnSummary{Column: c.Name, Summary: Describe(Values(c))})
	}
	return out
}

// Fprint writes one statistics block per column.
func Fprint(w io.Writer, summaries []ColumnSummary) {
	head := color.New(color.FgCyan, color.Bold)
	for _, s := range summaries {
		fmt.Fprintln(w)
		head.Fprintf(w, "Summary Statistics for '%s':\n", s.Column)
		fmt.Fprintf(w, "Mean: %s\n", num(s.Mean))
		fmt.Fprintf(w, "Median: %s\n", num(s.Median))
		fmt.Fprintf(w, "Min: %s, Max: %s\n", num(s.Min), num(s.Max))
		fmt.Fprintln(w, "Quartiles:")
		fmt.Fprintf(w, "0.25    %s\n", num(s.Q1))
		fmt.Fprintf(w, "0.50    %s\n", num(s.Q2))
		fmt.Fprintf(w, "0.75    %s\n", num(s.Q3))
	}
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	return fmt.Sprintf("%.6g", f)
}
