package anomaly

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"

	"github.com/KaramelBytes/healthprep-cli/internal/table"
)

// Threshold is the |z| above which a value is an outlier.
const Threshold = 3.0

// Score is the standard score of one row's value.
type Score struct {
	RowID int     `json:"row_id" yaml:"row_id"`
	Value float64 `json:"value" yaml:"value"`
	Z     float64 `json:"z" yaml:"z"`
}

// Result holds the outlier rows of one column. Rows is never nil.
type Result struct {
	Column string
	Found  bool
	Rows   *table.Table
	Scores []Score
}

// Detect flags rows whose value in column lies more than Threshold
// population standard deviations from the mean. Missing and non-numeric
// values are excluded before scoring; rows keep their original IDs. A column
// with fewer than two values or zero spread yields no anomalies.
func Detect(t *table.Table, column string) *Result {
	res := &Result{Column: column, Rows: table.Empty()}
	col, ok := t.Column(column)
	if !ok {
		return res
	}
	res.Found = true

	var pos []int
	var vals []float64
	for i, c := range col.Cells {
		if f, ok := numeric(c); ok {
			pos = append(pos, i)
			vals = append(vals, f)
		}
	}
	z := zScores(vals)
	var hits []int
	for i, s := range z {
		if math.Abs(s) > Threshold {
			hits = append(hits, pos[i])
			res.Scores = append(res.Scores, Score{RowID: t.RowID(pos[i]), Value: vals[i], Z: s})
		}
	}
	res.Rows = t.Select(hits)
	return res
}

// zScores returns (x-mean)/std with the population std. It returns all zeros
// when the std is zero or undefined.
func zScores(vals []float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) < 2 {
		return out
	}
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(vals)))
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return out
	}
	for i, v := range vals {
		out[i] = (v - mean) / std
	}
	return out
}

func numeric(c table.Cell) (float64, bool) {
	if f, ok := c.Float(); ok {
		return f, !math.IsNaN(f)
	}
	if s, ok := c.Text(); ok {
		f, err := table.ParseNumber(s)
		if err == nil && !math.IsNaN(f) {
			return f, true
		}
	}
	return 0, false
}

// Fprint writes the detection report for r.
func (r *Result) Fprint(w io.Writer) {
	if !r.Found {
		fmt.Fprintf(w, "No column '%s' for anomaly detection.\n", r.Column)
		return
	}
	color.New(color.FgYellow).Fprintf(w, "Anomalies detected in '%s':\n", r.Column)
	r.Rows.Fprint(w, r.Rows.Len())
}
