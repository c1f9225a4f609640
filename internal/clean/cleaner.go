package clean

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/KaramelBytes/healthprep-cli/internal/table"
)

// Rule normalizes a single column. It never looks at other columns and must
// pass already-missing cells through untouched.
type Rule struct {
	Column string
	Apply  func(c *table.Column, l *ColumnLog)
}

// DefaultRules is the fixed rule set for the recognized healthcare columns.
func DefaultRules() []Rule {
	return []Rule{
		{Column: table.VisitDate, Apply: cleanVisitDate},
		{Column: table.Age, Apply: cleanAge},
		{Column: table.Gender, Apply: cleanGender},
		{Column: table.PhoneNumber, Apply: cleanPhone},
		{Column: table.Email, Apply: cleanEmail},
		{Column: table.Cholesterol, Apply: cleanCholesterol},
		{Column: table.BloodPressure, Apply: inspectBloodPressure},
	}
}

// Cleaner removes duplicate rows and applies each rule whose column exists.
type Cleaner struct {
	Rules []Rule
}

// New returns a Cleaner with DefaultRules.
func New() *Cleaner { return &Cleaner{Rules: DefaultRules()} }

// Clean mutates t in place and returns it with an audit of what changed.
// Duplicates are dropped before the rules, so the Cholesterol median sees
// each distinct row once, and again after them, since normalized rows can
// collide. Rows with missing critical values are kept.
func (c *Cleaner) Clean(t *table.Table) (*table.Table, *Log) {
	log := &Log{}
	log.DuplicatesRemoved = t.DropDuplicates()
	for _, r := range c.Rules {
		col, ok := t.Column(r.Column)
		if !ok {
			continue
		}
		cl := &ColumnLog{Column: r.Column}
		r.Apply(col, cl)
		log.Columns = append(log.Columns, cl)
	}
	log.DuplicatesRemoved += t.DropDuplicates()
	return t, log
}

// Report prints the completion message and a preview of the cleaned table.
func Report(w io.Writer, t *table.Table, previewRows int) {
	color.New(color.FgGreen).Fprintln(w, "✓ Data cleaning complete!")
	t.Fprint(w, previewRows)
}

// Log records what the cleaner changed.
type Log struct {
	DuplicatesRemoved int          `json:"duplicates_removed" yaml:"duplicates_removed"`
	Columns           []*ColumnLog `json:"columns" yaml:"columns"`
}

// ColumnLog counts the changes made to one column.
type ColumnLog struct {
	Column string `json:"column" yaml:"column"`
	// Coerced counts present values that failed to parse and became missing.
	Coerced    int `json:"coerced_missing" yaml:"coerced_missing"`
	OutOfRange int `json:"out_of_range" yaml:"out_of_range"`
	Normalized int `json:"normalized" yaml:"normalized"`
	Imputed    int `json:"imputed" yaml:"imputed"`
	// Malformed counts values that were inspected but left as they were.
	Malformed int      `json:"malformed" yaml:"malformed"`
	FillValue *float64 `json:"fill_value,omitempty" yaml:"fill_value,omitempty"`
}

// Fprint writes a one-line-per-column audit.
func (l *Log) Fprint(w io.Writer) {
	if l == nil {
		return
	}
	fmt.Fprintf(w, "Duplicates removed: %d\n", l.DuplicatesRemoved)
	for _, c := range l.Columns {
		fmt.Fprintf(w, "- %s: coerced→missing %d, out of range %d, normalized %d, imputed %d",
			c.Column, c.Coerced, c.OutOfRange, c.Normalized, c.Imputed)
		if c.FillValue != nil {
			fmt.Fprintf(w, " (fill %.4g)", *c.FillValue)
		}
		if c.Malformed > 0 {
			fmt.Fprintf(w, ", malformed %d", c.Malformed)
		}
		fmt.Fprintln(w)
	}
}
