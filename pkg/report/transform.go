package report

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// FilterColumns keeps only the recognized columns, preserving the relative
// order of rows and of the surviving columns. A data row whose width differs
// from the header's fails with [ErrFormat].
func FilterColumns(t Table) (Table, error) {
	header := t.Header()
	if header == nil {
		return nil, fmt.Errorf("%w: missing header", ErrInput)
	}

	var keep []int

	for i, name := range header {
		if slices.Contains(RecognizedColumns, name) {
			keep = append(keep, i)
		}
	}

	out := make(Table, 0, len(t))

	for rowIdx, row := range t {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrFormat, rowIdx, len(row), len(header))
		}

		filtered := make(Row, len(keep))
		for i, col := range keep {
			filtered[i] = row[col]
		}

		out = append(out, filtered)
	}

	return out, nil
}

// AppendTotals returns a copy of t with a trailing totals row. Every cell
// after the first column must parse as a float; the first cell of the totals
// row is always [TotalLabel].
func AppendTotals(t Table) (Table, error) {
	header := t.Header()
	if header == nil {
		return nil, fmt.Errorf("%w: missing header", ErrInput)
	}

	sums := make([]float64, max(len(header)-1, 0))

	for rowIdx, row := range t.Rows() {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrFormat, rowIdx+1, len(row), len(header))
		}

		for col := 1; col < len(row); col++ {
			value, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %q: %q is not a number",
					ErrFormat, rowIdx+1, header[col], row[col])
			}

			sums[col-1] += value
		}
	}

	total := make(Row, 0, len(header))
	total = append(total, TotalLabel)

	for _, sum := range sums {
		total = append(total, FormatFloat(sum))
	}

	out := t.Clone()

	return append(out, total), nil
}

// Totaled runs [FilterColumns] followed by [AppendTotals].
func Totaled(t Table) (Table, error) {
	filtered, err := FilterColumns(t)
	if err != nil {
		return nil, err
	}

	return AppendTotals(filtered)
}

// FormatFloat renders v in its shortest form, keeping at least one
// fractional digit for integral values (10 -> "10.0").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.Contains(s, ".") {
		return s
	}

	return s + ".0"
}
