// Package pipeline runs the load, clean, visualize, detect and summarize
// stages in order over one dataset.
package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/KaramelBytes/healthprep-cli/internal/anomaly"
	"github.com/KaramelBytes/healthprep-cli/internal/clean"
	"github.com/KaramelBytes/healthprep-cli/internal/loader"
	"github.com/KaramelBytes/healthprep-cli/internal/report"
	"github.com/KaramelBytes/healthprep-cli/internal/stats"
	"github.com/KaramelBytes/healthprep-cli/internal/table"
	"github.com/KaramelBytes/healthprep-cli/internal/visual"
)

// Stage selects which steps after cleaning run.
type Stage int

const (
	Visualize Stage = 1 << iota
	Detect
	Summarize

	All = Visualize | Detect | Summarize
)

// Options controls a run.
type Options struct {
	Input string
	Load  loader.Options
	// PreviewRows is the number of rows printed after loading and cleaning.
	PreviewRows   int
	AnomalyColumn string
	// Stages defaults to All when zero.
	Stages Stage
	// Surface receives the charts. Nil skips visualization.
	Surface visual.Surface
	// ReportPath, when set, receives the run report in ReportFormat.
	ReportPath   string
	ReportFormat string
	Debug        bool
	// Out receives console output; nil means stdout.
	Out io.Writer
}

// Result is what a run produced.
type Result struct {
	Table     *table.Table
	Log       *clean.Log
	Charts    []visual.Chart
	Anomalies *anomaly.Result
	Summaries []stats.ColumnSummary
	Report    *report.Report
}

// Run executes the pipeline. Only a load failure or a report write failure
// is returned as an error; every other stage degrades to a console notice.
func Run(opt Options) (*Result, error) {
	out := opt.Out
	if out == nil {
		out = os.Stdout
	}
	if opt.Stages == 0 {
		opt.Stages = All
	}
	if opt.PreviewRows <= 0 {
		opt.PreviewRows = 15
	}
	if opt.AnomalyColumn == "" {
		opt.AnomalyColumn = table.Cholesterol
	}

	t, err := loader.Load(opt.Input, opt.Load)
	if err != nil {
		return nil, err
	}
	loader.Report(out, t, opt.PreviewRows)

	res := &Result{}
	res.Table, res.Log = clean.New().Clean(t)
	fmt.Fprintln(out)
	clean.Report(out, res.Table, opt.PreviewRows)
	if opt.Debug {
		res.Log.Fprint(out)
	}

	rep := report.New(opt.Input)
	rep.Rows = res.Table.Len()
	rep.Columns = res.Table.Names()
	rep.Cleaning = res.Log

	if opt.Stages&Visualize != 0 && opt.Surface != nil {
		v := &visual.Visualizer{Surface: opt.Surface, Warn: out}
		res.Charts = v.Render(res.Table)
		if png, ok := opt.Surface.(*visual.PNGSurface); ok {
			rep.Charts = png.Written
			if len(png.Written) > 0 {
				color.New(color.FgGreen).Fprintf(out, "✓ %d chart(s) written to %s\n", len(png.Written), png.Dir)
			}
		}
		if opt.Debug {
			fmt.Fprintf(out, "charts requested: %d\n", len(res.Charts))
		}
	}

	if opt.Stages&Detect != 0 {
		fmt.Fprintln(out)
		res.Anomalies = anomaly.Detect(res.Table, opt.AnomalyColumn)
		res.Anomalies.Fprint(out)
		rep.SetAnomalies(res.Anomalies)
	}

	if opt.Stages&Summarize != 0 {
		res.Summaries = stats.Summarize(res.Table)
		stats.Fprint(out, res.Summaries)
		rep.SetSummaries(res.Summaries)
	}

	res.Report = rep
	if opt.ReportPath != "" {
		if err := rep.Write(opt.ReportPath, opt.ReportFormat); err != nil {
			return res, err
		}
		color.New(color.FgGreen).Fprintf(out, "✓ Report written to %s\n", opt.ReportPath)
	}
	return res, nil
}
