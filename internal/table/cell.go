package table

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Kind is the declared semantic type of a column.
type Kind string

const (
	Numeric  Kind = "numeric"
	Datetime Kind = "datetime"
	Text     Kind = "text"
)

// MissingMarker is how a missing cell renders in previews.
const MissingMarker = "<NA>"

// Cell is a single optional value. The zero Cell is missing.
type Cell struct {
	valid bool
	kind  Kind
	num   float64
	str   string
	at    time.Time
}

// Missing returns an absent cell.
func Missing() Cell { return Cell{} }

// Num returns a present numeric cell.
func Num(f float64) Cell { return Cell{valid: true, kind: Numeric, num: f} }

// Str returns a present text cell.
func Str(s string) Cell { return Cell{valid: true, kind: Text, str: s} }

// Time returns a present datetime cell.
func Time(t time.Time) Cell { return Cell{valid: true, kind: Datetime, at: t} }

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool { return !c.valid }

// Kind returns the kind of the stored value, or "" for a missing cell.
func (c Cell) Kind() Kind {
	if !c.valid {
		return ""
	}
	return c.kind
}

// Float returns the numeric value if the cell is a present number.
func (c Cell) Float() (float64, bool) {
	if !c.valid || c.kind != Numeric {
		return 0, false
	}
	return c.num, true
}

// Text returns the string value if the cell is present text.
func (c Cell) Text() (string, bool) {
	if !c.valid || c.kind != Text {
		return "", false
	}
	return c.str, true
}

// At returns the time value if the cell is a present datetime.
func (c Cell) At() (time.Time, bool) {
	if !c.valid || c.kind != Datetime {
		return time.Time{}, false
	}
	return c.at, true
}

// String renders the cell for previews and text coercion.
func (c Cell) String() string {
	if !c.valid {
		return MissingMarker
	}
	switch c.kind {
	case Numeric:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case Datetime:
		if c.at.Hour() == 0 && c.at.Minute() == 0 && c.at.Second() == 0 && c.at.Nanosecond() == 0 {
			return c.at.Format("2006-01-02")
		}
		return c.at.Format("2006-01-02 15:04:05")
	default:
		return c.str
	}
}

// Equal reports exact equality; two missing cells are equal.
func (c Cell) Equal(o Cell) bool {
	if c.valid != o.valid {
		return false
	}
	if !c.valid {
		return true
	}
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case Numeric:
		return c.num == o.num
	case Datetime:
		return c.at.Equal(o.at)
	default:
		return c.str == o.str
	}
}

// key is a stable identity used for duplicate detection.
func (c Cell) key() string {
	if !c.valid {
		return "\x00"
	}
	switch c.kind {
	case Numeric:
		n := c.num
		if n == 0 {
			n = 0 // -0 and 0 are the same value
		}
		return "n" + strconv.FormatFloat(n, 'g', -1, 64)
	case Datetime:
		return "d" + strconv.FormatInt(c.at.UnixNano(), 10)
	default:
		// Length prefix keeps the row separator inside text from aliasing.
		return "s" + strconv.Itoa(len(c.str)) + ":" + c.str
	}
}

// ErrNotDecimal reports text that strconv would read as a hex float.
var ErrNotDecimal = errors.New("not a decimal number")

// ParseNumber reads decimal notation after trimming spaces. Hex literals such
// as 0x1A are rejected: in a dataset they are identifiers, not numbers.
func ParseNumber(v string) (float64, error) {
	s := strings.TrimSpace(v)
	u := strings.TrimLeft(s, "+-")
	if len(u) > 1 && u[0] == '0' && (u[1] == 'x' || u[1] == 'X') {
		return 0, ErrNotDecimal
	}
	return strconv.ParseFloat(s, 64)
}
