package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner displays an animation while a slow step runs, such as Argon2id
// passphrase stretching. Write it to stderr so stdout stays parseable.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration

	done     chan struct{}
	stopped  chan struct{}
	started  bool
	stopOnce sync.Once
}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.finish("\r\033[K")
}

// Success stops the spinner with a success message.
func (s *Spinner) Success(message string) {
	s.finish(fmt.Sprintf("\r\033[K✓ %s\n", message))
}

// Fail stops the spinner with a failure message.
func (s *Spinner) Fail(message string) {
	s.finish(fmt.Sprintf("\r\033[K✗ %s\n", message))
}

// finish stops the animation goroutine before writing the final line.
func (s *Spinner) finish(final string) {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.started {
			<-s.stopped
		}
		io.WriteString(s.w, final)
	})
}
