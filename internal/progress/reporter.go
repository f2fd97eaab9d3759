package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Indicator shows that an answer is on its way.
type Indicator interface {
	Start(label string)
	Stop()
}

// NewIndicator returns a TerminalIndicator if running in an interactive
// terminal, or a LineIndicator if the CI environment variable is set.
func NewIndicator(w io.Writer) Indicator {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LineIndicator{w: w}
	}
	return &TerminalIndicator{w: w}
}

// TerminalIndicator animates a spinner until stopped.
type TerminalIndicator struct {
	w io.Writer

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done chan struct{}
}

func (r *TerminalIndicator) Start(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		return
	}
	r.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	r.done = make(chan struct{})
	go spin(r.bar, r.done)
}

func (r *TerminalIndicator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar == nil {
		return
	}
	close(r.done)
	_ = r.bar.Finish()
	r.bar = nil
}

func spin(bar *progressbar.ProgressBar, done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

// LineIndicator prints one line per answer, suitable for CI logs.
type LineIndicator struct {
	w io.Writer

	mu      sync.Mutex
	running bool
}

func (r *LineIndicator) Start(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	fmt.Fprintf(r.w, "%s...\n", label)
}

func (r *LineIndicator) Stop() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}
