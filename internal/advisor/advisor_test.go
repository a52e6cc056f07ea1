package advisor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"crypto-idx-bot/internal/repository"
)

type stubCompleter struct {
	reply    string
	err      error
	received []Message
}

func (s *stubCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	s.received = messages
	return s.reply, s.err
}

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func TestAskBuildsPromptAndStoresTurns(t *testing.T) {
	completer := &stubCompleter{reply: "buy low, sell high"}
	store := repository.NewConversationRepository(10, testTracer())
	svc := NewService(testTracer(), completer, store, 10)

	reply, err := svc.Ask(context.Background(), 42, "what is RSI?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "buy low, sell high" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if len(completer.received) != 2 {
		t.Fatalf("expected system + user message, got %d", len(completer.received))
	}
	if completer.received[0].Role != "system" || !strings.Contains(completer.received[0].Content, "Crypto IDX") {
		t.Fatalf("unexpected system message: %+v", completer.received[0])
	}
	if completer.received[1].Role != "user" || completer.received[1].Content != "what is RSI?" {
		t.Fatalf("unexpected user message: %+v", completer.received[1])
	}

	stored, err := store.RecentMessages(context.Background(), 42, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 2 || stored[0].Role != "user" || stored[1].Role != "assistant" {
		t.Fatalf("expected stored question and reply, got %+v", stored)
	}
}

func TestAskIncludesHistory(t *testing.T) {
	completer := &stubCompleter{reply: "second answer"}
	store := repository.NewConversationRepository(10, testTracer())
	svc := NewService(testTracer(), completer, store, 10)

	if _, err := svc.Ask(context.Background(), 1, "first question"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Ask(context.Background(), 1, "second question"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// system + first question + first reply + second question
	if len(completer.received) != 4 {
		t.Fatalf("expected 4 messages on second ask, got %d", len(completer.received))
	}
	if completer.received[1].Content != "first question" || completer.received[2].Role != "assistant" {
		t.Fatalf("unexpected history ordering: %+v", completer.received)
	}
}

func TestAskKeepsChatsSeparate(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	store := repository.NewConversationRepository(10, testTracer())
	svc := NewService(testTracer(), completer, store, 10)

	if _, err := svc.Ask(context.Background(), 1, "chat one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Ask(context.Background(), 2, "chat two"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Chat 2 sees no history from chat 1.
	if len(completer.received) != 2 {
		t.Fatalf("expected isolated chat to carry 2 messages, got %d", len(completer.received))
	}
}

func TestAskInjectsMarketContext(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	svc := NewService(testTracer(), completer, nil, 10).WithMarketContext(func(context.Context) []string {
		return []string{"Latest signal: UP at 82.5% confidence"}
	})

	if _, err := svc.Ask(context.Background(), 1, "should I trade?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(completer.received[0].Content, "Latest signal: UP at 82.5% confidence") {
		t.Fatalf("expected market context in system prompt, got %q", completer.received[0].Content)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := NewService(testTracer(), &stubCompleter{}, nil, 10)
	if _, err := svc.Ask(context.Background(), 1, "   "); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestAskRequiresCompleter(t *testing.T) {
	svc := NewService(testTracer(), nil, nil, 10)
	if _, err := svc.Ask(context.Background(), 1, "hello"); err == nil {
		t.Fatal("expected error when completer is missing")
	}
}

func TestAskWrapsCompleterError(t *testing.T) {
	completer := &stubCompleter{err: fmt.Errorf("rate limited")}
	store := repository.NewConversationRepository(10, testTracer())
	svc := NewService(testTracer(), completer, store, 10)

	if _, err := svc.Ask(context.Background(), 1, "hello"); err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected wrapped completer error, got %v", err)
	}

	// Failed completions leave no transcript behind.
	stored, err := store.RecentMessages(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected empty transcript after failure, got %+v", stored)
	}
}

func TestResetClearsTranscript(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	store := repository.NewConversationRepository(10, testTracer())
	svc := NewService(testTracer(), completer, store, 10)

	if _, err := svc.Ask(context.Background(), 9, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Reset(context.Background(), 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := store.RecentMessages(context.Background(), 9, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected cleared transcript, got %+v", stored)
	}
}
