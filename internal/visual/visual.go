package visual

import (
	"fmt"
	"io"
	"time"

	"github.com/KaramelBytes/healthprep-cli/internal/table"
)

// Kind names a chart type.
type Kind string

const (
	Histogram Kind = "histogram"
	Box       Kind = "box"
	Line      Kind = "line"
	Scatter   Kind = "scatter"
)

// Group is one category of a box plot.
type Group struct {
	Label  string
	Values []float64
}

// Chart is a finished rendering request. Only the series matching Kind are
// populated, and rows missing either coordinate are already dropped.
type Chart struct {
	Kind    Kind
	Title   string
	XLabel  string
	YLabel  string
	X, Y    string // source column names; Y is empty for a histogram
	Density bool

	Values  []float64   // histogram
	Groups  []Group     // box, in order of first appearance
	Times   []time.Time // line x, unsorted
	XValues []float64   // scatter x
	YValues []float64   // line and scatter y
}

// Surface displays a chart and returns once it has been shown.
type Surface interface {
	Show(c Chart) error
}

// Visualizer builds the exploratory charts and hands them to a Surface.
type Visualizer struct {
	Surface Surface
	// Warn receives a line per chart the surface failed to show. Nil discards.
	Warn io.Writer
}

// Render shows every chart whose columns exist in t and returns the requests
// that were made. Missing columns are skipped silently.
func (v *Visualizer) Render(t *table.Table) []Chart {
	charts := Charts(t)
	for _, c := range charts {
		if v.Surface == nil {
			continue
		}
		if err := v.Surface.Show(c); err != nil && v.Warn != nil {
			fmt.Fprintf(v.Warn, "⚠ Warning: chart %q not rendered: %v\n", c.Title, err)
		}
	}
	return charts
}

// Charts builds the chart requests for t without showing them.
func Charts(t *table.Table) []Chart {
	chol, hasChol := t.Column(table.Cholesterol)
	if !hasChol {
		return nil
	}
	out := []Chart{histogram(chol)}
	if g, ok := t.Column(table.Gender); ok {
		out = append(out, boxByCategory(g, chol))
	}
	if d, ok := t.Column(table.VisitDate); ok {
		out = append(out, overTime(d, chol))
	}
	if a, ok := t.Column(table.Age); ok {
		out = append(out, scatter(a, chol))
	}
	return out
}

func histogram(c *table.Column) Chart {
	ch := Chart{
		Kind: Histogram, Title: "Distribution of Cholesterol Levels",
		XLabel: "Cholesterol", YLabel: "Frequency", X: c.Name, Density: true,
	}
	for _, v := range c.Cells {
		if f, ok := v.Float(); ok {
			ch.Values = append(ch.Values, f)
		}
	}
	return ch
}

func boxByCategory(cat, val *table.Column) Chart {
	ch := Chart{Kind: Box, Title: "Cholesterol Levels by Gender", XLabel: cat.Name, YLabel: val.Name, X: cat.Name, Y: val.Name}
	index := map[string]int{}
	for i := range cat.Cells {
		f, ok := val.Cells[i].Float()
		if !ok || cat.Cells[i].IsMissing() {
			continue
		}
		label := cat.Cells[i].String()
		j, seen := index[label]
		if !seen {
			j = len(ch.Groups)
			index[label] = j
			ch.Groups = append(ch.Groups, Group{Label: label})
		}
		ch.Groups[j].Values = append(ch.Groups[j].Values, f)
	}
	return ch
}

func overTime(date, val *table.Column) Chart {
	ch := Chart{Kind: Line, Title: "Cholesterol Over Time", XLabel: "Visit Date", YLabel: "Cholesterol", X: date.Name, Y: val.Name}
	for i := range date.Cells {
		at, ok := date.Cells[i].At()
		f, okv := val.Cells[i].Float()
		if !ok || !okv {
			continue
		}
		ch.Times = append(ch.Times, at)
		ch.YValues = append(ch.YValues, f)
	}
	return ch
}

func scatter(x, y *table.Column) Chart {
	ch := Chart{Kind: Scatter, Title: "Age vs Cholesterol", XLabel: "Age", YLabel: "Cholesterol", X: x.Name, Y: y.Name}
	for i := range x.Cells {
		xv, okx := x.Cells[i].Float()
		yv, oky := y.Cells[i].Float()
		if !okx || !oky {
			continue
		}
		ch.XValues = append(ch.XValues, xv)
		ch.YValues = append(ch.YValues, yv)
	}
	return ch
}

// Recorder is a headless Surface that keeps every request it is shown.
type Recorder struct {
	Shown []Chart
}

func (r *Recorder) Show(c Chart) error {
	r.Shown = append(r.Shown, c)
	return nil
}
