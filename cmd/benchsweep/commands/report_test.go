package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/benchsweep/cmd/benchsweep/commands"
	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
)

func writeReport(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bench.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func executeReport(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := commands.NewReportCommand()

	var outBuf, errBuf bytes.Buffer

	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return outBuf.String(), err
}

func TestReportCommand_FiltersAndTotals(t *testing.T) {
	t.Parallel()

	path := writeReport(t, "name,iterations,real_time,cpu_time,extra\nBM_Foo,10,5.0,4.0,junk\n")

	out, err := executeReport(t, path)
	require.NoError(t, err)

	assert.Equal(t, "name,iterations,real_time,cpu_time\nBM_Foo,10,5.0,4.0\ntotal,10.0,5.0,4.0\n", out)
}

func TestReportCommand_NoArgumentPrintsUsage(t *testing.T) {
	t.Parallel()

	out, err := executeReport(t)
	require.NoError(t, err)

	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "benchreport [flags] <file>")
}

func TestReportCommand_NonNumericCell(t *testing.T) {
	t.Parallel()

	path := writeReport(t, "name,cpu_time\nBM_Foo,N/A\n")

	out, err := executeReport(t, path)
	require.ErrorIs(t, err, report.ErrFormat)
	assert.Empty(t, out)
}

func TestReportCommand_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := executeReport(t, filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, report.ErrInput)
}

func TestReportCommand_TextFormat(t *testing.T) {
	t.Parallel()

	path := writeReport(t, "name,iterations,real_time,cpu_time\nBM_Foo,10,5.0,4.0\nBM_Bar,20,1.0,1.5\n")

	out, err := executeReport(t, "--format", "text", path)
	require.NoError(t, err)

	assert.Contains(t, out, "BM_Bar")
	assert.Contains(t, out, "5.5")
}

func TestTransform_RaggedRow(t *testing.T) {
	t.Parallel()

	_, err := commands.Transform(writeReport(t, "name,cpu_time\nBM_Foo,1.0,extra\n"))
	require.ErrorIs(t, err, report.ErrFormat)
}
