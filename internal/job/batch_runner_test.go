package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func TestBatchRunnerDeliversAllSignals(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	calls := 0
	generate := func(ctx context.Context) (string, error) {
		calls++
		return fmt.Sprintf("signal %d", calls), nil
	}
	runner := NewBatchRunner(tracer, 3, 2*time.Millisecond, generate)

	sink := &messageSink{}
	if err := runner.Start(42, sink.send); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	eventually(t, func() bool { return sink.len() == 4 })

	got := sink.snapshot()
	if got[0] != "signal 1" || got[2] != "signal 3" {
		t.Fatalf("unexpected signal order: %+v", got)
	}
	if got[3] != "📋 Batch complete! Use /batch to start new batch." {
		t.Fatalf("missing completion message, got %q", got[3])
	}

	eventually(t, func() bool { return !runner.Active(42) })
}

func TestBatchRunnerRejectsConcurrentSessions(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	generate := func(ctx context.Context) (string, error) { return "signal", nil }
	runner := NewBatchRunner(tracer, 2, 50*time.Millisecond, generate)

	sink := &messageSink{}
	if err := runner.Start(7, sink.send); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	if err := runner.Start(7, sink.send); !errors.Is(err, ErrBatchActive) {
		t.Fatalf("expected ErrBatchActive, got %v", err)
	}
	// A different chat is not blocked.
	if err := runner.Start(8, sink.send); err != nil {
		t.Fatalf("unexpected start error for second chat: %v", err)
	}

	runner.StopAll()
	eventually(t, func() bool { return !runner.Active(7) && !runner.Active(8) })
}

func TestBatchRunnerCancelStopsSession(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	generate := func(ctx context.Context) (string, error) { return "signal", nil }
	runner := NewBatchRunner(tracer, 10, 30*time.Millisecond, generate)

	sink := &messageSink{}
	if err := runner.Start(9, sink.send); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	eventually(t, func() bool { return sink.len() >= 1 })

	if !runner.Cancel(9) {
		t.Fatal("expected cancel to find the session")
	}
	eventually(t, func() bool { return !runner.Active(9) })

	sent := sink.len()
	time.Sleep(60 * time.Millisecond)
	if sink.len() != sent {
		t.Fatalf("session kept sending after cancel: %d -> %d", sent, sink.len())
	}
	for _, msg := range sink.snapshot() {
		if msg == "📋 Batch complete! Use /batch to start new batch." {
			t.Fatal("cancelled session must not announce completion")
		}
	}
}

func TestBatchRunnerCancelUnknownChat(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	runner := NewBatchRunner(tracer, 3, time.Millisecond, func(ctx context.Context) (string, error) { return "", nil })

	if runner.Cancel(12345) {
		t.Fatal("expected cancel of unknown chat to report false")
	}
}

func TestBatchRunnerContinuesAfterGenerateError(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	calls := 0
	generate := func(ctx context.Context) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("market data unavailable")
		}
		return fmt.Sprintf("signal %d", calls), nil
	}
	runner := NewBatchRunner(tracer, 3, time.Millisecond, generate)

	sink := &messageSink{}
	if err := runner.Start(11, sink.send); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	// Two delivered signals plus the completion message; the failed
	// iteration is skipped without aborting the batch.
	eventually(t, func() bool { return sink.len() == 3 })
	got := sink.snapshot()
	if got[0] != "signal 1" || got[1] != "signal 3" {
		t.Fatalf("unexpected messages: %+v", got)
	}
}

func TestBatchRunnerStartValidation(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	runner := NewBatchRunner(tracer, 3, time.Millisecond, nil)
	if err := runner.Start(1, func(string) {}); err == nil {
		t.Fatal("expected error without a generate function")
	}

	runner = NewBatchRunner(tracer, 3, time.Millisecond, func(ctx context.Context) (string, error) { return "", nil })
	if err := runner.Start(1, nil); err == nil {
		t.Fatal("expected error without a send callback")
	}
}

func TestBatchRunnerDefaults(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	runner := NewBatchRunner(tracer, 0, 0, func(ctx context.Context) (string, error) { return "", nil })

	if runner.size != defaultBatchSize {
		t.Fatalf("expected default size %d, got %d", defaultBatchSize, runner.size)
	}
	if runner.delay != defaultBatchDelay {
		t.Fatalf("expected default delay %v, got %v", defaultBatchDelay, runner.delay)
	}
}

type messageSink struct {
	mu       sync.Mutex
	messages []string
}

func (s *messageSink) send(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *messageSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *messageSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
