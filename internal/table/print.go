package table

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// maxCellWidth truncates long values in previews.
const maxCellWidth = 40

// Fprint writes the first n rows as a bordered table. The leading column is
// the original row ID.
func (t *Table) Fprint(w io.Writer, n int) {
	if t.Width() == 0 {
		fmt.Fprintln(w, "Empty table")
		fmt.Fprintf(w, "Columns: []\nIndex: []\n")
		return
	}
	head := t.Head(n)
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(append([]string{""}, t.Names()...))
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for i := 0; i < head.Len(); i++ {
		row := make([]string, 0, head.Width()+1)
		row = append(row, strconv.Itoa(head.RowID(i)))
		for _, c := range head.Row(i) {
			v := c.String()
			if len(v) > maxCellWidth {
				v = v[:maxCellWidth-3] + "..."
			}
			row = append(row, v)
		}
		tw.Append(row)
	}
	tw.Render()
	if t.Len() > head.Len() {
		fmt.Fprintf(w, "... %d more rows\n", t.Len()-head.Len())
	}
}

// FprintInfo writes a structural summary: shape, and per column its kind and
// non-missing count.
func (t *Table) FprintInfo(w io.Writer) {
	fmt.Fprintf(w, "Rows: %d, Columns: %d\n", t.Len(), t.Width())
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"#", "Column", "Non-Null Count", "Kind"})
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, c := range t.cols {
		tw.Append([]string{strconv.Itoa(i), c.Name, fmt.Sprintf("%d non-null", c.NonMissing()), string(c.Kind)})
	}
	tw.Render()
}
