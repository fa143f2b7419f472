package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ruliana/link-community/pkg/slink"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// spinner is the default clustering indicator: one redrawn line on stderr
// with the label, the percent of distance evaluations done and the ETA.
// It stops by itself when ctx is cancelled.
type spinner struct {
	out   io.Writer
	label string

	mu     sync.Mutex
	status string
	width  int

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

func startSpinner(ctx context.Context, out io.Writer, label string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		out:     out,
		label:   label,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.label
	if s.status != "" {
		text += " " + s.status
	}
	s.width = max(s.width, len(text))
	fmt.Fprintf(s.out, "\r%s %s", styleSpinner.Render(frame), StyleDim.Render(text))
}

// progress is a slink progress callback.
func (s *spinner) progress(p slink.Progress) {
	status := fmt.Sprintf("%3.0f%%", 100*p.Fraction())
	if eta := p.ETA(); eta > 0 {
		status += " · eta " + eta.Round(time.Second).String()
	}
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// stop ends the animation and clears its line. Later calls do nothing.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		s.mu.Lock()
		defer s.mu.Unlock()
		fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+2))
	})
}

// fail stops the spinner and leaves msg as a failure line.
func (s *spinner) fail(msg string) {
	s.stop()
	newReport(s.out).failed("%s", msg)
}
