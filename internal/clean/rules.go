package clean

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/healthprep-cli/internal/stats"
	"github.com/KaramelBytes/healthprep-cli/internal/table"
)

// Valid domains for the numeric and digit-count rules.
const (
	minAge, maxAge                 = 0, 120
	minPhoneDigits, maxPhoneDigits = 7, 15
	minCholesterol, maxCholesterol = 50, 400
)

var lower = cases.Lower(language.Und)

// dateLayouts are tried before the free-form parser. Ambiguous numeric
// dates are read day first.
var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006-01-02 15:04:05", "2006-01-02 15:04", "2006/01/02",
	"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "02.01.2006", "02/01/06",
	"02/01/2006 15:04", "02/01/2006 15:04:05",
	"2 January 2006", "2 Jan 2006", "02-Jan-2006", "January 2, 2006", "Jan 2, 2006", "Jan 2 2006",
}

// parseDate reads a date from mixed textual formats, preferring
// day-before-month when the order is ambiguous.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false), dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// toNumber coerces a cell to a number; text must parse as a float.
func toNumber(c table.Cell) (float64, bool) {
	if f, ok := c.Float(); ok {
		return f, true
	}
	if s, ok := c.Text(); ok {
		f, err := table.ParseNumber(s)
		if err == nil && !math.IsNaN(f) {
			return f, true
		}
	}
	return 0, false
}

func cleanVisitDate(c *table.Column, l *ColumnLog) {
	for i, v := range c.Cells {
		if v.IsMissing() {
			continue
		}
		if _, ok := v.At(); ok {
			continue
		}
		if t, ok := parseDate(v.String()); ok {
			c.Cells[i] = table.Time(t)
			l.Normalized++
			continue
		}
		c.Cells[i] = table.Missing()
		l.Coerced++
	}
	c.Kind = table.Datetime
}

// coerceRange turns the column numeric, nulling parse failures and values
// outside [lo, hi].
func coerceRange(c *table.Column, l *ColumnLog, lo, hi float64) {
	for i, v := range c.Cells {
		if v.IsMissing() {
			continue
		}
		f, ok := toNumber(v)
		if !ok {
			c.Cells[i] = table.Missing()
			l.Coerced++
			continue
		}
		if f < lo || f > hi {
			c.Cells[i] = table.Missing()
			l.OutOfRange++
			continue
		}
		c.Cells[i] = table.Num(f)
	}
	c.Kind = table.Numeric
}

func cleanAge(c *table.Column, l *ColumnLog) {
	coerceRange(c, l, minAge, maxAge)
}

func cleanGender(c *table.Column, l *ColumnLog) {
	for i, v := range c.Cells {
		if v.IsMissing() {
			continue
		}
		g := lower.String(strings.TrimSpace(v.String()))
		switch g {
		case "m":
			g = "male"
		case "f":
			g = "female"
		}
		if g != "male" && g != "female" {
			c.Cells[i] = table.Missing()
			l.Coerced++
			continue
		}
		if s, _ := v.Text(); s != g {
			l.Normalized++
		}
		c.Cells[i] = table.Str(g)
	}
	c.Kind = table.Text
}

func cleanPhone(c *table.Column, l *ColumnLog) {
	for i, v := range c.Cells {
		if v.IsMissing() {
			continue
		}
		raw := v.String()
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, raw)
		if n := len(digits); n < minPhoneDigits || n > maxPhoneDigits {
			c.Cells[i] = table.Missing()
			l.OutOfRange++
			continue
		}
		if s, _ := v.Text(); s != digits {
			l.Normalized++
		}
		c.Cells[i] = table.Str(digits)
	}
	c.Kind = table.Text
}

func cleanEmail(c *table.Column, l *ColumnLog) {
	for i, v := range c.Cells {
		if v.IsMissing() {
			continue
		}
		if s, ok := v.Text(); ok && strings.Contains(s, "@") {
			continue
		}
		c.Cells[i] = table.Missing()
		l.Coerced++
	}
}

// cleanCholesterol nulls invalid readings, then fills every gap with the
// median of what is left. An all-missing column stays missing.
func cleanCholesterol(c *table.Column, l *ColumnLog) {
	coerceRange(c, l, minCholesterol, maxCholesterol)
	var valid []float64
	for _, v := range c.Cells {
		if f, ok := v.Float(); ok {
			valid = append(valid, f)
		}
	}
	if len(valid) == 0 {
		return
	}
	med := stats.Median(valid)
	for i, v := range c.Cells {
		if v.IsMissing() {
			c.Cells[i] = table.Num(med)
			l.Imputed++
		}
	}
	if l.Imputed > 0 {
		l.FillValue = &med
	}
}

// inspectBloodPressure splits "systolic/diastolic" readings. The parts are not
// stored; unparseable readings are only counted.
func inspectBloodPressure(c *table.Column, l *ColumnLog) {
	for _, v := range c.Cells {
		if v.IsMissing() {
			continue
		}
		if _, _, ok := splitBloodPressure(v.String()); !ok {
			l.Malformed++
		}
	}
}

func splitBloodPressure(s string) (systolic, diastolic float64, ok bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	trim := func(p string) string { return strings.TrimFunc(p, unicode.IsSpace) }
	sys, err1 := strconv.ParseFloat(trim(parts[0]), 64)
	dia, err2 := strconv.ParseFloat(trim(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return sys, dia, true
}
