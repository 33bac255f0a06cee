package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerShowsStages(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Assembling circuit")
	time.Sleep(3 * spinnerInterval)
	s.Stage("Encoding blueprint")
	time.Sleep(3 * spinnerInterval)
	if d := s.Stop(); d <= 0 {
		t.Errorf("Stop() = %v, want a positive duration", d)
	}

	got := out.String()
	for _, want := range []string{"Assembling circuit", "Encoding blueprint"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q does not mention %q", got, want)
		}
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("output should end by clearing the line, got %q", got)
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after a plain Stop")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinner(ctx, &syncBuffer{}, "Rehashing packages")
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after cancellation")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Rendering circuit")
	s.Stop()
	s.Stop()
	if got := out.String(); strings.Contains(got, "Rendering") {
		t.Errorf("immediate stop should draw nothing, got %q", got)
	}
}
