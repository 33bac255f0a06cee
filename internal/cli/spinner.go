package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates the current pipeline stage with its elapsed time while
// a long step runs. It stops on Stop or when the parent context ends.
type spinner struct {
	w       io.Writer
	parent  context.Context
	start   time.Time
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu    sync.Mutex
	stage string
	width int // runes drawn on the current line
}

// startSpinner draws stage on w until the spinner is stopped.
func startSpinner(ctx context.Context, w io.Writer, stage string) *spinner {
	s := &spinner{
		w:       w,
		parent:  ctx,
		start:   time.Now(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		stage:   stage,
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.parent.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

// Stage replaces the message shown next to the spinner.
func (s *spinner) Stage(msg string) {
	s.mu.Lock()
	s.stage = msg
	s.mu.Unlock()
}

// Stop halts the animation, clears its line and returns the time since the
// spinner started. It may be called more than once.
func (s *spinner) Stop() time.Duration {
	s.once.Do(func() { close(s.done) })
	<-s.stopped
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	return time.Since(s.start)
}

// Cancelled reports whether the parent context ended.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := fmt.Sprintf("%s %s", s.stage, time.Since(s.start).Truncate(100*time.Millisecond))
	s.clearLocked()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
	s.width = utf8.RuneCountInString(frame) + 1 + utf8.RuneCountInString(text)
}

func (s *spinner) clearLocked() {
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}
