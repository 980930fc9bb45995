package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse splits CSV text into a [Table]. Simple double-quoted fields are
// honoured, as emitted by Google Benchmark for benchmark names. Rows may have
// differing widths; shape is checked by [FilterColumns].
func Parse(text string) (Table, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInput)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	var table Table

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}

		table = append(table, Row(record))
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInput)
	}

	return table, nil
}

// ReadFile reads and parses a benchmark CSV file.
func ReadFile(path string) (Table, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no file given", ErrInput)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInput, path, err)
	}

	table, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return table, nil
}

// Serialize joins each row's cells with a comma and rows with a newline.
// No quoting or escaping is applied.
func Serialize(t Table) string {
	var sb strings.Builder

	for i, row := range t {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(strings.Join(row, ","))
	}

	return sb.String()
}
