// Package render writes report tables in the formats offered by the
// command-line tools.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
)

// ErrUnknownFormat is returned for an output format name that is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// Format names an output format.
type Format string

// Supported output formats.
const (
	FormatCSV  Format = "csv"
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPlot Format = "plot"
)

var formats = []Format{FormatCSV, FormatText, FormatJSON, FormatYAML, FormatPlot}

// Formats lists the supported format names, in help order.
func Formats() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}

	return names
}

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(formats, f) {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}

	return f, nil
}

// Document is the structured form of a table used by the json and yaml formats.
type Document struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows"    yaml:"rows"`
}

// NewDocument splits a table into its header and data rows.
func NewDocument(t report.Table) Document {
	doc := Document{Columns: []string(t.Header()), Rows: [][]string{}}
	if doc.Columns == nil {
		doc.Columns = []string{}
	}

	for _, row := range t.Rows() {
		doc.Rows = append(doc.Rows, []string(row))
	}

	return doc
}

// Write renders t to w in the given format.
func Write(w io.Writer, format Format, t report.Table) error {
	var err error

	switch format {
	case FormatCSV:
		_, err = io.WriteString(w, report.Serialize(t)+"\n")
	case FormatText:
		_, err = io.WriteString(w, Text(t)+"\n")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(NewDocument(t))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		err = errors.Join(enc.Encode(NewDocument(t)), enc.Close())
	case FormatPlot:
		err = Plot(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	return nil
}

// Text renders t as an aligned plain-text table.
func Text(t report.Table) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	if header := t.Header(); header != nil {
		tbl.AppendHeader(toRow(header))
	}

	for _, row := range t.Rows() {
		if len(row) > 0 && row[0] == report.TotalLabel {
			tbl.AppendFooter(toRow(row))

			continue
		}

		tbl.AppendRow(toRow(row))
	}

	return tbl.Render()
}

func toRow(cells report.Row) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}

	return row
}
