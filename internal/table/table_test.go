package table

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Table {
	t.Helper()
	tb := New("Name", "Age")
	require.NoError(t, tb.AppendRow(0, []Cell{Str("ann"), Num(40)}))
	require.NoError(t, tb.AppendRow(1, []Cell{Str("bob"), Missing()}))
	require.NoError(t, tb.AppendRow(2, []Cell{Str("ann"), Num(40)}))
	require.NoError(t, tb.AppendRow(3, []Cell{Str("ann"), Num(41)}))
	require.NoError(t, tb.AppendRow(4, []Cell{Str("bob"), Missing()}))
	return tb
}

func TestCellMissingIsDistinct(t *testing.T) {
	assert.True(t, Missing().IsMissing())
	assert.False(t, Num(0).IsMissing())
	assert.False(t, Str("").IsMissing())
	assert.False(t, Missing().Equal(Num(0)))
	assert.False(t, Missing().Equal(Str("")))
	assert.True(t, Missing().Equal(Missing()))
	assert.Equal(t, MissingMarker, Missing().String())
}

func TestCellAccessors(t *testing.T) {
	f, ok := Num(2.5).Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
	_, ok = Str("2.5").Float()
	assert.False(t, ok)

	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", Time(d).String())
	assert.Equal(t, "2024-03-01 09:30:00", Time(d.Add(9*time.Hour+30*time.Minute)).String())
	assert.Equal(t, "200", Num(200).String())
}

func TestAddColumnEnforcesUniformLength(t *testing.T) {
	tb := Empty()
	require.NoError(t, tb.AddColumn(&Column{Name: "a", Kind: Numeric, Cells: []Cell{Num(1), Num(2)}}))
	err := tb.AddColumn(&Column{Name: "b", Kind: Numeric, Cells: []Cell{Num(1)}})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	err = tb.AddColumn(&Column{Name: "a", Kind: Numeric, Cells: []Cell{Num(1), Num(2)}})
	assert.ErrorIs(t, err, ErrDuplicateColumn)
	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, 1, tb.RowID(1))
}

func TestDropDuplicates(t *testing.T) {
	tb := sample(t)
	removed := tb.DropDuplicates()
	assert.Equal(t, 2, removed)
	require.Equal(t, 3, tb.Len())
	assert.Equal(t, []int{0, 1, 3}, []int{tb.RowID(0), tb.RowID(1), tb.RowID(2)})

	age, ok := tb.Column("Age")
	require.True(t, ok)
	v, _ := age.Cells[2].Float()
	assert.Equal(t, 41.0, v, "row differing in one cell is retained")
}

func TestDropDuplicatesTreatsNegativeZeroAsZero(t *testing.T) {
	tb := New("v")
	require.NoError(t, tb.AppendRow(0, []Cell{Num(0)}))
	require.NoError(t, tb.AppendRow(1, []Cell{Num(math.Copysign(0, -1))}))
	assert.Equal(t, 1, tb.DropDuplicates())
	assert.Equal(t, 0, tb.RowID(0))
}

func TestDropDuplicatesTextCannotForgeSeparator(t *testing.T) {
	tb := New("a", "b")
	require.NoError(t, tb.AppendRow(0, []Cell{Str("a\x1fsb"), Str("c")}))
	require.NoError(t, tb.AppendRow(1, []Cell{Str("a"), Str("b\x1fsc")}))
	assert.Equal(t, 0, tb.DropDuplicates())
	assert.Equal(t, 2, tb.Len())
}

func TestParseNumber(t *testing.T) {
	for _, in := range []string{"42", " 3.5 ", "-1e3", "+7"} {
		_, err := ParseNumber(in)
		assert.NoError(t, err, in)
	}
	for _, in := range []string{"0x1A", "0X1p3", "-0x10", "abc", ""} {
		_, err := ParseNumber(in)
		assert.Error(t, err, in)
	}
	_, err := ParseNumber("0x1A")
	assert.ErrorIs(t, err, ErrNotDecimal)
}

func TestSelectKeepsRowIDs(t *testing.T) {
	tb := sample(t)
	sub := tb.Select([]int{3, 1})
	require.Equal(t, 2, sub.Len())
	assert.Equal(t, 3, sub.RowID(0))
	assert.Equal(t, 1, sub.RowID(1))
	pos, ok := tb.Position(3)
	assert.True(t, ok)
	assert.Equal(t, 3, pos)

	// Subsets do not alias the source cells.
	name, _ := sub.Column("Name")
	name.Cells[0] = Str("zed")
	orig, _ := tb.Column("Name")
	s, _ := orig.Cells[3].Text()
	assert.Equal(t, "ann", s)
}

func TestFprintPreviewAndInfo(t *testing.T) {
	tb := sample(t)
	var buf bytes.Buffer
	tb.Fprint(&buf, 2)
	out := buf.String()
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "ann")
	assert.Contains(t, out, MissingMarker)
	assert.Contains(t, out, "... 3 more rows")

	buf.Reset()
	tb.FprintInfo(&buf)
	assert.Contains(t, buf.String(), "Rows: 5, Columns: 2")
	assert.Contains(t, buf.String(), "3 non-null")

	buf.Reset()
	Empty().Fprint(&buf, 5)
	assert.Contains(t, buf.String(), "Empty table")
}
