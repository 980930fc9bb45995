package sweep

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/benchsweep/pkg/bench"
	"github.com/Sumatoshi-tech/benchsweep/pkg/gitlib"
)

// Progress prints "\r<i>/<total> <commit>" after each commit. The commit is
// green when it produced results and red when its build or run failed.
// A nil *Progress prints nothing.
type Progress struct {
	w       io.Writer
	ok      *color.Color
	failed  *color.Color
	printed bool
}

// NewProgress creates a progress indicator writing to w.
func NewProgress(w io.Writer, colored bool) *Progress {
	p := &Progress{
		w:      w,
		ok:     color.New(color.FgGreen),
		failed: color.New(color.FgRed),
	}

	if !colored {
		p.ok.DisableColor()
		p.failed.DisableColor()
	}

	return p
}

// Step reports that the index-th commit (1-based) of total is done.
func (p *Progress) Step(index, total int, commit gitlib.CommitID, status bench.Status) {
	if p == nil {
		return
	}

	c := p.ok
	if status == bench.StatusFailed {
		c = p.failed
	}

	fmt.Fprintf(p.w, "\r%d/%d %s", index, total, c.Sprint(commit.String()))

	p.printed = true
}

// Done ends the progress line.
func (p *Progress) Done() {
	if p == nil || !p.printed {
		return
	}

	fmt.Fprintln(p.w)

	p.printed = false
}
