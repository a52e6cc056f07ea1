package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBatchSize  = 10
	defaultBatchDelay = 30 * time.Second
)

// ErrBatchActive is returned by Start when the chat already has a batch
// session running.
var ErrBatchActive = errors.New("batch already running")

// BatchRunner produces a fixed-size burst of signals for a chat, pacing
// consecutive signals with a delay. Each chat gets at most one session at a
// time; Cancel stops a session between signals.
type BatchRunner struct {
	tracer   trace.Tracer
	size     int
	delay    time.Duration
	generate func(ctx context.Context) (string, error)

	mu       sync.Mutex
	sessions map[int64]context.CancelFunc
}

// NewBatchRunner wires a runner around a generate function that returns one
// formatted signal message per call.
func NewBatchRunner(tracer trace.Tracer, size int, delay time.Duration, generate func(ctx context.Context) (string, error)) *BatchRunner {
	if size <= 0 {
		size = defaultBatchSize
	}
	if delay <= 0 {
		delay = defaultBatchDelay
	}
	return &BatchRunner{
		tracer:   tracer,
		size:     size,
		delay:    delay,
		generate: generate,
		sessions: make(map[int64]context.CancelFunc),
	}
}

// Start launches a batch session for the chat. The send callback receives
// each signal message as it is produced, from the session goroutine.
func (r *BatchRunner) Start(chatID int64, send func(string)) error {
	if r == nil || r.generate == nil || send == nil {
		return errors.New("batch runner is not fully initialized")
	}

	r.mu.Lock()
	if _, active := r.sessions[chatID]; active {
		r.mu.Unlock()
		return fmt.Errorf("%w for chat %d", ErrBatchActive, chatID)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.sessions[chatID] = cancel
	r.mu.Unlock()

	go r.run(ctx, chatID, send)
	return nil
}

// Cancel stops the chat's session, if any. The session goroutine notices at
// its next pause and exits without a completion message.
func (r *BatchRunner) Cancel(chatID int64) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	cancel, ok := r.sessions[chatID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// Active reports whether the chat currently has a running session.
func (r *BatchRunner) Active(chatID int64) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[chatID]
	return ok
}

// StopAll cancels every running session. Used during shutdown.
func (r *BatchRunner) StopAll() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for chatID, cancel := range r.sessions {
		cancel()
		delete(r.sessions, chatID)
	}
}

func (r *BatchRunner) run(ctx context.Context, chatID int64, send func(string)) {
	defer r.finish(chatID)

	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "batch-job.session")
		defer span.End()
	}

	for i := 0; i < r.size; i++ {
		if ctx.Err() != nil {
			return
		}
		msg, err := r.generate(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("batch signal %d/%d for chat %d failed: %v", i+1, r.size, chatID, err)
		} else {
			send(msg)
		}
		if i == r.size-1 {
			break
		}
		// Pause between signals, not after the last one.
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.delay):
		}
	}

	send("📋 Batch complete! Use /batch to start new batch.")
}

func (r *BatchRunner) finish(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.sessions[chatID]; ok {
		cancel()
		delete(r.sessions, chatID)
	}
}
