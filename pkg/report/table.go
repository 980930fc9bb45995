package report

import (
	"errors"
	"slices"
)

// Sentinel errors for report processing.
var (
	// ErrInput indicates missing or empty report input.
	ErrInput = errors.New("report input")
	// ErrFormat indicates a non-numeric cell or a row whose shape does not match the header.
	ErrFormat = errors.New("report format")
)

// Column names recognized by the report transform.
const (
	ColumnName       = "name"
	ColumnIterations = "iterations"
	ColumnRealTime   = "real_time"
	ColumnCPUTime    = "cpu_time"
)

// TotalLabel is the first cell of the totals row.
const TotalLabel = "total"

// RecognizedColumns lists the columns kept by [FilterColumns], in canonical order.
var RecognizedColumns = []string{ColumnName, ColumnIterations, ColumnRealTime, ColumnCPUTime}

// Row is an ordered sequence of cells.
type Row []string

// Table is an ordered sequence of rows. Row 0, when present, is the header.
type Table []Row

// Header returns the header row, or nil for an empty table.
func (t Table) Header() Row {
	if len(t) == 0 {
		return nil
	}

	return t[0]
}

// Rows returns the data rows (everything after the header).
func (t Table) Rows() []Row {
	if len(t) < 2 {
		return nil
	}

	return t[1:]
}

// ColumnIndex returns the position of the named header column, or -1.
func (t Table) ColumnIndex(name string) int {
	return slices.Index(t.Header(), name)
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}

	out := make(Table, len(t))
	for i, row := range t {
		out[i] = slices.Clone(row)
	}

	return out
}

// StripTotals returns the table without trailing rows labelled [TotalLabel],
// so that a previously totaled report can be totaled again.
func StripTotals(t Table) Table {
	end := len(t)
	for end > 1 && len(t[end-1]) > 0 && t[end-1][0] == TotalLabel {
		end--
	}

	return t[:end]
}
