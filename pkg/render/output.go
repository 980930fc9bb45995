package render

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
)

// WriteOutput renders t to the file at path, or to stdout when path is empty.
func WriteOutput(stdout io.Writer, path string, format Format, t report.Table) (err error) {
	if path == "" {
		return Write(stdout, format, t)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return Write(f, format, t)
}
