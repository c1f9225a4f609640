package loader

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/healthprep-cli/internal/table"
)

// loadXLSX reads the named sheet (or the first one) and treats its first row
// as the header.
func loadXLSX(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DataLoadError{Path: path, Op: "open", Err: fmt.Errorf("workbook has no sheets")}
	}
	target := sheets[0]
	if sheet != "" {
		target = ""
		for _, s := range sheets {
			if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(sheet)) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, &DataLoadError{Path: path, Op: "select sheet",
				Err: fmt.Errorf("sheet %q not found; available sheets: %s", sheet, strings.Join(sheets, ", "))}
		}
	}
	rows, err := f.GetRows(target)
	if err != nil {
		return nil, &DataLoadError{Path: path, Op: "read sheet " + target, Err: err}
	}
	if len(rows) == 0 {
		return nil, &DataLoadError{Path: path, Op: "read header", Err: errNoHeader}
	}
	t, err := build(rows[0], rows[1:])
	if err != nil {
		return nil, &DataLoadError{Path: path, Op: "parse", Err: err}
	}
	return t, nil
}
