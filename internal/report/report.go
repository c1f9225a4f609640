// Package report serializes the audit of one pipeline run.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/healthprep-cli/internal/anomaly"
	"github.com/KaramelBytes/healthprep-cli/internal/clean"
	"github.com/KaramelBytes/healthprep-cli/internal/stats"
	"github.com/KaramelBytes/healthprep-cli/internal/utils"
)

// Supported output formats.
const (
	JSON     = "json"
	YAML     = "yaml"
	Markdown = "markdown"
)

// Report describes what a run did. It never carries the cleaned rows.
type Report struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Source      string        `json:"source" yaml:"source"`
	Rows        int           `json:"rows" yaml:"rows"`
	Columns     []string      `json:"columns" yaml:"columns"`
	Cleaning    *clean.Log    `json:"cleaning,omitempty" yaml:"cleaning,omitempty"`
	Anomalies   *Anomalies    `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	Summaries   []ColumnStats `json:"summaries" yaml:"summaries"`
	Charts      []string      `json:"charts,omitempty" yaml:"charts,omitempty"`
}

// Anomalies is the serializable form of an anomaly.Result.
type Anomalies struct {
	Column    string          `json:"column" yaml:"column"`
	Found     bool            `json:"found" yaml:"found"`
	Threshold float64         `json:"threshold" yaml:"threshold"`
	Rows      []anomaly.Score `json:"rows" yaml:"rows"`
}

// ColumnStats mirrors stats.Summary with NaN encoded as null.
type ColumnStats struct {
	Column string   `json:"column" yaml:"column"`
	Count  int      `json:"count" yaml:"count"`
	Mean   *float64 `json:"mean" yaml:"mean"`
	Median *float64 `json:"median" yaml:"median"`
	Min    *float64 `json:"min" yaml:"min"`
	Max    *float64 `json:"max" yaml:"max"`
	Q1     *float64 `json:"q1" yaml:"q1"`
	Q3     *float64 `json:"q3" yaml:"q3"`
	Std    *float64 `json:"std" yaml:"std"`
}

// New starts a report for source with a fresh run ID.
func New(source string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
	}
}

// SetAnomalies records r. A nil result is ignored.
func (r *Report) SetAnomalies(res *anomaly.Result) {
	if res == nil {
		return
	}
	a := &Anomalies{Column: res.Column, Found: res.Found, Threshold: anomaly.Threshold, Rows: res.Scores}
	if a.Rows == nil {
		a.Rows = []anomaly.Score{}
	}
	r.Anomalies = a
}

// SetSummaries records per-column statistics.
func (r *Report) SetSummaries(s []stats.ColumnSummary) {
	r.Summaries = make([]ColumnStats, 0, len(s))
	for _, cs := range s {
		r.Summaries = append(r.Summaries, ColumnStats{
			Column: cs.Column,
			Count:  cs.Count,
			Mean:   utils.Finite(cs.Mean),
			Median: utils.Finite(cs.Median),
			Min:    utils.Finite(cs.Min),
			Max:    utils.Finite(cs.Max),
			Q1:     utils.Finite(cs.Q1),
			Q3:     utils.Finite(cs.Q3),
			Std:    utils.Finite(cs.Std),
		})
	}
}

// Encode renders the report in format (json, yaml or markdown).
func (r *Report) Encode(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", JSON:
		return utils.PrettyJSON(r)
	case YAML, "yml":
		b, err := yaml.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	case Markdown, "md":
		return []byte(r.Markdown()), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q (use json, yaml or markdown)", format)
	}
}

// Write encodes the report and writes it atomically to path.
func (r *Report) Write(path, format string) error {
	b, err := r.Encode(format)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Markdown renders a compact, human-readable version of the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Data preparation report\n\n")
	fmt.Fprintf(&b, "- Run: %s\n- Generated: %s\n- Source: %s\n- Rows: %d\n- Columns: %d\n\n",
		r.RunID, r.GeneratedAt.Format(time.RFC3339), r.Source, r.Rows, len(r.Columns))

	if r.Cleaning != nil {
		b.WriteString("## Cleaning\n\n")
		fmt.Fprintf(&b, "Duplicates removed: %d\n\n", r.Cleaning.DuplicatesRemoved)
		if len(r.Cleaning.Columns) > 0 {
			b.WriteString("| Column | Coerced | Out of range | Normalized | Imputed | Malformed |\n")
			b.WriteString("|---|---|---|---|---|---|\n")
			for _, c := range r.Cleaning.Columns {
				fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d |\n",
					safeCell(c.Column), c.Coerced, c.OutOfRange, c.Normalized, c.Imputed, c.Malformed)
			}
			b.WriteString("\n")
		}
	}

	if a := r.Anomalies; a != nil {
		b.WriteString("## Anomalies\n\n")
		switch {
		case !a.Found:
			fmt.Fprintf(&b, "Column '%s' not present.\n\n", a.Column)
		case len(a.Rows) == 0:
			fmt.Fprintf(&b, "No values in '%s' beyond |z| > %.1f.\n\n", a.Column, a.Threshold)
		default:
			fmt.Fprintf(&b, "%d value(s) in '%s' beyond |z| > %.1f:\n\n", len(a.Rows), a.Column, a.Threshold)
			b.WriteString("| Row | Value | z |\n|---|---|---|\n")
			for _, s := range a.Rows {
				fmt.Fprintf(&b, "| %d | %.6g | %.2f |\n", s.RowID, s.Value, s.Z)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Summaries) > 0 {
		b.WriteString("## Summary statistics\n\n")
		b.WriteString("| Column | Count | Mean | Median | Min | Max | Q1 | Q3 |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, s := range r.Summaries {
			fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s |\n", safeCell(s.Column), s.Count,
				num(s.Mean), num(s.Median), num(s.Min), num(s.Max), num(s.Q1), num(s.Q3))
		}
		b.WriteString("\n")
	}

	if len(r.Charts) > 0 {
		b.WriteString("## Charts\n\n")
		for _, c := range r.Charts {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return b.String()
}

func num(p *float64) string {
	if p == nil {
		return "nan"
	}
	return fmt.Sprintf("%.6g", *p)
}

func safeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
