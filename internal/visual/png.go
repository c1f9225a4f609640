package visual

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	moremath "github.com/aclements/go-moremath/stats"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/healthprep-cli/internal/stats"
)

// ErrTooFewPoints is returned for charts with fewer than two plottable points.
var ErrTooFewPoints = errors.New("not enough data to plot")

// PNGSurface renders each chart to <Dir>/<slug>.png.
type PNGSurface struct {
	Dir    string
	Width  int
	Height int

	// Written lists the files produced so far.
	Written []string
}

// Show renders c and returns after the file is closed.
func (s *PNGSurface) Show(c Chart) error {
	ch, err := s.build(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir charts dir: %w", err)
	}
	path := filepath.Join(s.Dir, slug(c.Title)+".png")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := ch.Render(chart.PNG, f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("render: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart file: %w", err)
	}
	s.Written = append(s.Written, path)
	return nil
}

func (s *PNGSurface) build(c Chart) (*chart.Chart, error) {
	var (
		ch  *chart.Chart
		err error
	)
	switch c.Kind {
	case Histogram:
		ch, err = histogramChart(c)
	case Box:
		ch, err = boxChart(c)
	case Line:
		ch, err = lineChart(c)
	case Scatter:
		ch, err = scatterChart(c)
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, err
	}
	ch.Title = c.Title
	ch.Width, ch.Height = s.Width, s.Height
	if ch.Width <= 0 {
		ch.Width = 1024
	}
	if ch.Height <= 0 {
		ch.Height = 640
	}
	ch.Background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
	ch.XAxis.Name = c.XLabel
	ch.YAxis.Name = c.YLabel
	return ch, nil
}

// pointStyle renders points only (no connecting line).
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		StrokeColor: chart.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

func histogramChart(c Chart) (*chart.Chart, error) {
	n := len(c.Values)
	if n < 2 {
		return nil, ErrTooFewPoints
	}
	lo, hi := bounds(c.Values)
	bins := int(math.Ceil(math.Log2(float64(n)) + 1)) // Sturges
	width := (hi - lo) / float64(bins)
	if width == 0 {
		bins, width = 1, 1
		lo -= 0.5
	}
	counts := make([]float64, bins)
	for _, v := range c.Values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	// Outline the bars as one filled step series.
	xs := []float64{lo}
	ys := []float64{0}
	for i, cnt := range counts {
		left := lo + float64(i)*width
		xs = append(xs, left, left+width)
		ys = append(ys, cnt, cnt)
	}
	xs = append(xs, lo+float64(bins)*width)
	ys = append(ys, 0)

	ymax := 0.0
	for _, cnt := range counts {
		ymax = math.Max(ymax, cnt)
	}
	series := []chart.Series{chart.ContinuousSeries{
		Name:    "count",
		Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 1, FillColor: chart.ColorBlue.WithAlpha(90)},
		XValues: xs,
		YValues: ys,
	}}
	if c.Density {
		if kx, ky, ok := densityCurve(c.Values, lo, lo+float64(bins)*width, float64(n)*width); ok {
			series = append(series, chart.ContinuousSeries{
				Name:    "density",
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2},
				XValues: kx,
				YValues: ky,
			})
			_, top := bounds(ky)
			ymax = math.Max(ymax, top)
		}
	}
	return &chart.Chart{
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: ymax * 1.1}},
		Series: series,
	}, nil
}

// densityCurve samples a kernel density estimate scaled to histogram counts.
func densityCurve(vals []float64, lo, hi, scale float64) ([]float64, []float64, bool) {
	s := stats.Describe(vals)
	if s.Count < 2 || !(s.Std > 0) {
		return nil, nil, false
	}
	kde := &moremath.KDE{Sample: moremath.Sample{Xs: vals}}
	const steps = 100
	xs := make([]float64, steps)
	ys := make([]float64, steps)
	for i := range xs {
		x := lo + (hi-lo)*float64(i)/float64(steps-1)
		xs[i] = x
		ys[i] = kde.PDF(x) * scale
	}
	return xs, ys, true
}

func boxChart(c Chart) (*chart.Chart, error) {
	if len(c.Groups) == 0 {
		return nil, ErrTooFewPoints
	}
	var series []chart.Series
	ticks := []chart.Tick{{Value: 0.5, Label: ""}}
	ylo, yhi := math.Inf(1), math.Inf(-1)
	boxStyle := chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 1.5, FillColor: chart.ColorBlue.WithAlpha(60)}
	lineStyle := chart.Style{StrokeColor: chart.ColorBlack, StrokeWidth: 1.5}
	for i, g := range c.Groups {
		x := float64(i + 1)
		sorted := append([]float64(nil), g.Values...)
		sort.Float64s(sorted)
		q1, med, q3 := stats.Quantile(sorted, 0.25), stats.Quantile(sorted, 0.5), stats.Quantile(sorted, 0.75)
		iqr := q3 - q1
		lowW, highW := q1, q3
		var outX, outY []float64
		for _, v := range sorted {
			if v < q1-1.5*iqr || v > q3+1.5*iqr {
				outX = append(outX, x)
				outY = append(outY, v)
				continue
			}
			lowW = math.Min(lowW, v)
			highW = math.Max(highW, v)
		}
		ylo = math.Min(ylo, sorted[0])
		yhi = math.Max(yhi, sorted[len(sorted)-1])

		series = append(series,
			chart.ContinuousSeries{Name: g.Label, Style: boxStyle,
				XValues: []float64{x - 0.3, x + 0.3, x + 0.3, x - 0.3, x - 0.3},
				YValues: []float64{q1, q1, q3, q3, q1}},
			chart.ContinuousSeries{Style: lineStyle, XValues: []float64{x - 0.3, x + 0.3}, YValues: []float64{med, med}},
			chart.ContinuousSeries{Style: lineStyle, XValues: []float64{x, x}, YValues: []float64{lowW, q1}},
			chart.ContinuousSeries{Style: lineStyle, XValues: []float64{x, x}, YValues: []float64{q3, highW}},
		)
		if len(outX) > 0 {
			series = append(series, chart.ContinuousSeries{Style: pointStyle(chart.ColorAlternateGray), XValues: outX, YValues: outY})
		}
		ticks = append(ticks, chart.Tick{Value: x, Label: g.Label})
	}
	n := float64(len(c.Groups))
	ticks = append(ticks, chart.Tick{Value: n + 0.5, Label: ""})
	ymin, ymax := padRange(ylo, yhi)
	return &chart.Chart{
		XAxis:  chart.XAxis{Ticks: ticks, Range: &chart.ContinuousRange{Min: 0.5, Max: n + 0.5}},
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: ymin, Max: ymax}},
		Series: series,
	}, nil
}

// lineChart orders points by date and plots the mean value per date.
func lineChart(c Chart) (*chart.Chart, error) {
	type agg struct {
		at       time.Time
		sum, cnt float64
	}
	byDay := map[int64]*agg{}
	for i, at := range c.Times {
		k := at.UnixNano()
		a := byDay[k]
		if a == nil {
			a = &agg{at: at}
			byDay[k] = a
		}
		a.sum += c.YValues[i]
		a.cnt++
	}
	if len(byDay) < 2 {
		return nil, ErrTooFewPoints
	}
	points := make([]*agg, 0, len(byDay))
	for _, a := range byDay {
		points = append(points, a)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].at.Before(points[j].at) })
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.at
		ys[i] = p.sum / p.cnt
	}
	ymin, ymax := padRange(bounds(ys))
	return &chart.Chart{
		XAxis: chart.XAxis{ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02")},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: ymin, Max: ymax}},
		Series: []chart.Series{chart.TimeSeries{
			Name:    c.YLabel,
			Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
			XValues: xs,
			YValues: ys,
		}},
	}, nil
}

func scatterChart(c Chart) (*chart.Chart, error) {
	if len(c.XValues) < 2 {
		return nil, ErrTooFewPoints
	}
	xmin, xmax := padRange(bounds(c.XValues))
	ymin, ymax := padRange(bounds(c.YValues))
	return &chart.Chart{
		XAxis: chart.XAxis{Range: &chart.ContinuousRange{Min: xmin, Max: xmax}},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: ymin, Max: ymax}},
		Series: []chart.Series{chart.ContinuousSeries{
			Name:    c.YLabel,
			Style:   pointStyle(chart.ColorBlue),
			XValues: c.XValues,
			YValues: c.YValues,
		}},
	}, nil
}

func bounds(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// padRange widens [lo, hi] by 5% so a flat series still has a drawable range.
func padRange(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(hi), 1)
	}
	return lo - 0.05*span, hi + 0.05*span
}

func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
