package advisor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"crypto-idx-bot/internal/repository"
)

const systemPersona = `You are a trading advisor embedded in a Crypto IDX signal bot.
Crypto IDX is a synthetic index: its price is a simulated random walk, not a real market.
Signals are generated from RSI, MACD and Bollinger Band readings over that walk.
Answer questions about signals, indicators, risk management and the user's trade history.
Be concise. Remind users that trading carries risk and that signals are not financial advice.`

// Message is one chat turn sent to the language model.
type Message struct {
	Role    string
	Content string
}

// Completer produces a model reply for an ordered list of chat turns.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ConversationStore persists per-chat transcripts between questions.
type ConversationStore interface {
	AppendMessage(ctx context.Context, chatID int64, role, content string) error
	RecentMessages(ctx context.Context, chatID int64, limit int) ([]repository.ConversationMessage, error)
}

// Service answers free-form questions with conversation memory and a live
// market context injected into the system prompt.
type Service struct {
	tracer     trace.Tracer
	completer  Completer
	store      ConversationStore
	maxHistory int
	contextFn  func(context.Context) []string
}

func NewService(tracer trace.Tracer, completer Completer, store ConversationStore, maxHistory int) *Service {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return &Service{
		tracer:     tracer,
		completer:  completer,
		store:      store,
		maxHistory: maxHistory,
	}
}

// WithMarketContext installs a provider of live state lines appended to the
// system prompt on every question.
func (s *Service) WithMarketContext(fn func(context.Context) []string) *Service {
	s.contextFn = fn
	return s
}

func (s *Service) Ask(ctx context.Context, chatID int64, question string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.ask")
	defer span.End()

	if s.completer == nil {
		return "", fmt.Errorf("advisor service is not fully initialized")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is empty")
	}

	messages := []Message{{Role: "system", Content: s.systemPrompt(ctx)}}
	if s.store != nil {
		history, err := s.store.RecentMessages(ctx, chatID, s.maxHistory)
		if err != nil {
			log.Printf("advisor: failed to load history for chat %d: %v", chatID, err)
		}
		for _, m := range history {
			messages = append(messages, Message{Role: m.Role, Content: m.Content})
		}
	}
	messages = append(messages, Message{Role: "user", Content: question})

	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	if s.store != nil {
		if err := s.store.AppendMessage(ctx, chatID, "user", question); err != nil {
			log.Printf("advisor: failed to store question for chat %d: %v", chatID, err)
		}
		if err := s.store.AppendMessage(ctx, chatID, "assistant", reply); err != nil {
			log.Printf("advisor: failed to store reply for chat %d: %v", chatID, err)
		}
	}
	return reply, nil
}

// Reset drops the stored transcript for a chat.
func (s *Service) Reset(ctx context.Context, chatID int64) error {
	ctx, span := s.tracer.Start(ctx, "advisor.reset")
	defer span.End()

	clearer, ok := s.store.(interface {
		ClearConversation(ctx context.Context, chatID int64) error
	})
	if !ok {
		return nil
	}
	return clearer.ClearConversation(ctx, chatID)
}

func (s *Service) systemPrompt(ctx context.Context) string {
	if s.contextFn == nil {
		return systemPersona
	}
	lines := s.contextFn(ctx)
	if len(lines) == 0 {
		return systemPersona
	}
	return systemPersona + "\n\nCurrent state:\n" + strings.Join(lines, "\n")
}
