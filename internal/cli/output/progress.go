package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar displays the progress of a batch, such as verifying every
// key of a file.
type ProgressBar struct {
	w       io.Writer
	title   string
	unit    string
	total   int64
	current int64
	width   int
	mu      sync.Mutex
}

// NewProgressBar creates a new progress bar counting items of unit.
func NewProgressBar(w io.Writer, title, unit string) *ProgressBar {
	return &ProgressBar{
		w:     w,
		title: title,
		unit:  unit,
		width: 40,
	}
}

// SetTotal sets the number of items.
func (p *ProgressBar) SetTotal(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

// Update updates the progress.
func (p *ProgressBar) Update(current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	p.total = total
	p.render()
}

// Increment adds to current progress.
func (p *ProgressBar) Increment(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	p.render()
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %d %s", p.title, p.current, p.unit)
		return
	}

	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}

	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%d/%d %s)",
		p.title,
		bar,
		percent*100,
		p.current,
		p.total,
		p.unit,
	)
}
