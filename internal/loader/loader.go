package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/KaramelBytes/healthprep-cli/internal/table"
)

// Options controls how an input file is read.
type Options struct {
	// Delimiter for delimited text. If 0, it is chosen from the file extension.
	Delimiter rune
	// Sheet selects an XLSX worksheet by name; empty means the first sheet.
	Sheet string
}

var errNoHeader = errors.New("no header row")

// naTokens are read as missing. The set matches what common spreadsheet and
// dataframe tools treat as NA.
var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {}, "#N/A N/A": {},
	"1.#IND": {}, "-1.#IND": {}, "1.#QNAN": {}, "-1.#QNAN": {},
}

// Load reads a delimited text or .xlsx file into a table. Any failure is
// returned as a *DataLoadError.
func Load(path string, opt Options) (*table.Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return loadXLSX(path, opt.Sheet)
	}
	return loadDelimited(path, opt.Delimiter)
}

func loadDelimited(path string, delim rune) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataLoadError{Path: path, Op: "read header", Err: errNoHeader}
		}
		return nil, &DataLoadError{Path: path, Op: "read header", Err: err}
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &DataLoadError{Path: path, Op: fmt.Sprintf("read row %d", len(records)+1), Err: err}
		}
		records = append(records, rec)
	}
	t, err := build(header, records)
	if err != nil {
		return nil, &DataLoadError{Path: path, Op: "parse", Err: err}
	}
	return t, nil
}

// build turns raw string records into typed columns. Short records are padded
// with missing cells; long records are rejected.
func build(header []string, records [][]string) (*table.Table, error) {
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, errNoHeader
	}
	names := dedupeNames(header)
	raw := make([][]string, len(names))
	for i, rec := range records {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+1, len(names), len(rec))
		}
		for j := range names {
			v := ""
			if j < len(rec) {
				v = rec[j]
			}
			raw[j] = append(raw[j], v)
		}
	}
	t := table.Empty()
	for j, name := range names {
		if err := t.AddColumn(inferColumn(name, raw[j], len(records))); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// inferColumn makes a numeric column when every present value parses as a
// float, otherwise a text column holding the values verbatim.
func inferColumn(name string, vals []string, n int) *table.Column {
	cells := make([]table.Cell, n)
	numeric := true
	nums := make([]float64, n)
	for i, v := range vals {
		if isNA(v) {
			continue
		}
		x, err := table.ParseNumber(v)
		if err != nil {
			numeric = false
			break
		}
		nums[i] = x
	}
	kind := table.Text
	if numeric {
		kind = table.Numeric
	}
	for i, v := range vals {
		switch {
		case isNA(v):
			cells[i] = table.Missing()
		case numeric:
			cells[i] = table.Num(nums[i])
		default:
			cells[i] = table.Str(v)
		}
	}
	return &table.Column{Name: name, Kind: kind, Cells: cells}
}

func isNA(v string) bool {
	_, ok := naTokens[strings.TrimSpace(v)]
	return ok
}

// dedupeNames trims a UTF-8 BOM and suffixes repeated names as "x.1", "x.2".
func dedupeNames(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := h
		if n, ok := seen[h]; ok {
			name = fmt.Sprintf("%s.%d", h, n)
			seen[h] = n + 1
		} else {
			seen[h] = 1
		}
		out[i] = name
	}
	return out
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}

// Report prints the load confirmation, a preview and the structural summary.
func Report(w io.Writer, t *table.Table, previewRows int) {
	color.New(color.FgGreen).Fprintln(w, "✓ Data loaded successfully!")
	t.Fprint(w, previewRows)
	t.FprintInfo(w)
}
