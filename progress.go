package meltr

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// progressStep is how many cells are processed between progress updates;
// updating on every cell would dominate the loop.
const progressStep = 10000

// progressBar renders a single-line console progress indicator from the
// tokenizer's (consumed, total) byte counts.
type progressBar struct {
	w       io.Writer
	render  *color.Color
	stopped bool
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{
		w:      w,
		render: color.New(color.FgCyan),
	}
}

const barWidth = 40

func (p *progressBar) show(consumed, total int64) {
	if p.stopped || total <= 0 {
		return
	}

	frac := float64(consumed) / float64(total)
	if frac > 1 {
		frac = 1
	}

	done := int(frac * barWidth)
	bar := ""
	for i := 0; i < barWidth; i++ {
		if i < done {
			bar += "="
		} else {
			bar += " "
		}
	}

	p.render.Fprintf(p.w, "\rmelting [%s] %3.0f%%", bar, frac*100)
}

// stop finalizes the indicator and moves to a fresh line.
func (p *progressBar) stop() {
	if p.stopped {
		return
	}
	p.stopped = true
	fmt.Fprint(p.w, "\r\033[K")
}
