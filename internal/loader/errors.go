package loader

import "fmt"

// DataLoadError indicates the input file could not be turned into a table:
// it is missing, unreadable, or not valid delimited text.
type DataLoadError struct {
	Path string
	Op   string
	Err  error
}

func (e *DataLoadError) Error() string {
	if e == nil {
		return "data load failed"
	}
	if e.Op != "" {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Op, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }
