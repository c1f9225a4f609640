package table

import (
	"errors"
	"fmt"
	"strings"
)

// Recognized healthcare columns. Any of them may be absent from an input file.
const (
	VisitDate     = "Visit Date"
	Age           = "Age"
	Gender        = "Gender"
	PhoneNumber   = "Phone Number"
	Email         = "Email"
	Cholesterol   = "Cholesterol"
	BloodPressure = "Blood Pressure"
)

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// NonMissing counts present cells.
func (c *Column) NonMissing() int {
	n := 0
	for _, v := range c.Cells {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}

// Table is an ordered set of equal-length columns. Each row keeps the
// 0-based position it had in the source file so subsets map back to it.
type Table struct {
	cols  []*Column
	index map[string]int
	ids   []int
}

var (
	ErrLengthMismatch  = errors.New("column length does not match table")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// New returns a table with the given column names, all of kind Text and no rows.
func New(names ...string) *Table {
	t := &Table{index: make(map[string]int)}
	for _, n := range names {
		_ = t.AddColumn(&Column{Name: n, Kind: Text})
	}
	return t
}

// Empty returns a table with no rows and no columns.
func Empty() *Table { return New() }

// AddColumn appends a column. The first column of an empty table fixes the
// row count and gets sequential row IDs.
func (t *Table) AddColumn(c *Column) error {
	if _, ok := t.index[c.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
	}
	if len(t.cols) == 0 && len(t.ids) == 0 {
		t.ids = make([]int, len(c.Cells))
		for i := range t.ids {
			t.ids[i] = i
		}
	} else if len(c.Cells) != len(t.ids) {
		return fmt.Errorf("%w: %q has %d cells, table has %d rows", ErrLengthMismatch, c.Name, len(c.Cells), len(t.ids))
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// AppendRow adds one row under the given original row ID.
func (t *Table) AppendRow(id int, cells []Cell) error {
	if len(cells) != len(t.cols) {
		return fmt.Errorf("%w: row has %d cells, table has %d columns", ErrLengthMismatch, len(cells), len(t.cols))
	}
	for i, c := range t.cols {
		c.Cells = append(c.Cells, cells[i])
	}
	t.ids = append(t.ids, id)
	return nil
}

// Has reports whether a column with the exact name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Columns returns the columns in table order.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Len is the number of rows.
func (t *Table) Len() int { return len(t.ids) }

// Width is the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// RowID returns the original position of row i.
func (t *Table) RowID(i int) int { return t.ids[i] }

// Position returns the current position of the row with the given original ID.
func (t *Table) Position(id int) (int, bool) {
	for i, v := range t.ids {
		if v == id {
			return i, true
		}
	}
	return 0, false
}

// Row returns a copy of the cells of row i in column order.
func (t *Table) Row(i int) []Cell {
	out := make([]Cell, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Cells[i]
	}
	return out
}

// Select returns a new table holding the rows at the given positions,
// keeping their original row IDs.
func (t *Table) Select(positions []int) *Table {
	out := &Table{index: make(map[string]int, len(t.cols)), ids: make([]int, 0, len(positions))}
	for _, p := range positions {
		out.ids = append(out.ids, t.ids[p])
	}
	for _, c := range t.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind, Cells: make([]Cell, 0, len(positions))}
		for _, p := range positions {
			nc.Cells = append(nc.Cells, c.Cells[p])
		}
		out.index[nc.Name] = len(out.cols)
		out.cols = append(out.cols, nc)
	}
	return out
}

// Head returns the first n rows (or fewer).
func (t *Table) Head(n int) *Table {
	if n > t.Len() {
		n = t.Len()
	}
	if n < 0 {
		n = 0
	}
	pos := make([]int, n)
	for i := range pos {
		pos[i] = i
	}
	return t.Select(pos)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	pos := make([]int, t.Len())
	for i := range pos {
		pos[i] = i
	}
	return t.Select(pos)
}

// DropDuplicates removes rows that match an earlier row in every column,
// keeping the first occurrence and the order of the rest. It returns the
// number of rows removed.
func (t *Table) DropDuplicates() int {
	seen := make(map[string]struct{}, t.Len())
	keep := make([]int, 0, t.Len())
	var b strings.Builder
	for i := 0; i < t.Len(); i++ {
		b.Reset()
		for _, c := range t.cols {
			b.WriteString(c.Cells[i].key())
			b.WriteByte(0x1f)
		}
		k := b.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	removed := t.Len() - len(keep)
	if removed == 0 {
		return 0
	}
	kept := t.Select(keep)
	t.cols, t.index, t.ids = kept.cols, kept.index, kept.ids
	return removed
}
