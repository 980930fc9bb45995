package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/benchsweep/pkg/render"
	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
)

func totaledReport() report.Table {
	return report.Table{
		{"name", "iterations", "real_time", "cpu_time"},
		{"BM_add", "1000", "2.5", "2.0"},
		{"BM_mul", "2000", "1.5", "2.0"},
		{"total", "3000.0", "4.0", "4.0"},
	}
}

func collated() report.Table {
	return report.Table{
		{"commit", "BM_add", "BM_mul"},
		{"0123456789abcdef", "2.0", "-"},
		{"fedcba9876543210", "1.8", "3.1"},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, name := range render.Formats() {
		f, err := render.ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, render.Format(name), f)
	}

	f, err := render.ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, render.FormatJSON, f)

	_, err = render.ParseFormat("xml")
	require.ErrorIs(t, err, render.ErrUnknownFormat)
	assert.Contains(t, err.Error(), "csv, text, json, yaml, plot")
}

func TestWrite_CSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatCSV, totaledReport()))

	assert.Equal(t,
		"name,iterations,real_time,cpu_time\nBM_add,1000,2.5,2.0\nBM_mul,2000,1.5,2.0\ntotal,3000.0,4.0,4.0\n",
		buf.String())
}

func TestWrite_CSVHeaderOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatCSV, report.Table{{"commit"}}))

	assert.Equal(t, "commit\n", buf.String())
}

func TestWrite_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatText, totaledReport()))

	out := buf.String()
	assert.Contains(t, out, "cpu_time")
	assert.Contains(t, out, "BM_mul")
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "3000.0")

	// Header precedes rows, totals come last.
	assert.Less(t, strings.Index(out, "name"), strings.Index(out, "BM_add"))
	assert.Less(t, strings.Index(out, "BM_mul"), strings.Index(out, "total"))
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatJSON, collated()))

	var doc render.Document

	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []string{"commit", "BM_add", "BM_mul"}, doc.Columns)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, []string{"0123456789abcdef", "2.0", "-"}, doc.Rows[0])
}

func TestWrite_JSONEmptyTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatJSON, report.Table{{"commit"}}))

	assert.JSONEq(t, `{"columns":["commit"],"rows":[]}`, buf.String())
}

func TestWrite_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, render.FormatYAML, collated()))

	var doc render.Document

	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []string{"commit", "BM_add", "BM_mul"}, doc.Columns)
	assert.Equal(t, []string{"fedcba9876543210", "1.8", "3.1"}, doc.Rows[1])
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Write(&buf, render.Format("xml"), collated())
	require.ErrorIs(t, err, render.ErrUnknownFormat)
	assert.Empty(t, buf.String())
}
