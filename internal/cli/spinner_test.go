package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ruliana/link-community/pkg/slink"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
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

func TestSpinnerShowsProgress(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Clustering 7 edges")
	time.Sleep(3 * spinnerTick)
	// 10 of 45 distance evaluations after one second.
	s.progress(slink.Progress{Done: 5, Total: 10, Elapsed: time.Second})
	time.Sleep(3 * spinnerTick)
	s.stop()

	got := out.String()
	for _, want := range []string{"Clustering 7 edges", " 22%", "eta 4s"} {
		if !strings.Contains(got, want) {
			t.Errorf("spinner output %q missing %q", got, want)
		}
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner output should end by clearing its line: %q", got)
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinner(ctx, &syncBuffer{}, "Clustering")
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context was cancelled")
	}
	s.stop()
}

func TestSpinnerStopTwice(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Clustering")
	s.stop()
	n := len(out.String())
	s.stop()
	if len(out.String()) != n {
		t.Error("second stop() wrote to the output")
	}
}

func TestSpinnerFail(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Clustering")
	s.fail("Clustering failed")
	if got := out.String(); !strings.Contains(got, markFailed+" Clustering failed") {
		t.Errorf("fail() output = %q, want the failure line", got)
	}
}
