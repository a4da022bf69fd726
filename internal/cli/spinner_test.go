package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func quietSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinner(ctx, msg)
	s.out = &buf
	return s, &buf
}

func TestSpinnerStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, buf := quietSpinner(context.Background(), "Solving...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
	if !strings.Contains(buf.String(), "Solving...") {
		t.Errorf("spinner never drew its message: %q", buf.String())
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "Rendering...")
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("spinner should report cancellation of its parent")
	}
}

func TestSpinnerStopWithMessages(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := captureStdout(t)

	s, _ := quietSpinner(context.Background(), "x")
	s.Start()
	s.StopWithSuccess("done %d", 1)
	if !strings.Contains(out.String(), "done 1") {
		t.Errorf("output = %q", out.String())
	}
}
