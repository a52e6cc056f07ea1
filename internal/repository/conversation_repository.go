package repository

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const DefaultMaxConversation = 40

// ConversationMessage is one turn of an advisor conversation.
type ConversationMessage struct {
	Role    string
	Content string
	At      time.Time
}

// ConversationRepository keeps per-chat advisor transcripts in memory, capped
// per chat. Transcripts do not survive a restart.
type ConversationRepository struct {
	tracer trace.Tracer
	max    int

	mu    sync.Mutex
	chats map[int64][]ConversationMessage
}

func NewConversationRepository(maxPerChat int, tracer trace.Tracer) *ConversationRepository {
	if maxPerChat <= 0 {
		maxPerChat = DefaultMaxConversation
	}
	return &ConversationRepository{
		tracer: tracer,
		max:    maxPerChat,
		chats:  make(map[int64][]ConversationMessage),
	}
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, chatID int64, role, content string) error {
	_, span := r.tracer.Start(ctx, "conversation-repo.append")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	messages := append(r.chats[chatID], ConversationMessage{Role: role, Content: content, At: time.Now()})
	if len(messages) > r.max {
		messages = append(messages[:0:0], messages[len(messages)-r.max:]...)
	}
	r.chats[chatID] = messages
	return nil
}

// RecentMessages returns up to limit messages for the chat, oldest first.
func (r *ConversationRepository) RecentMessages(ctx context.Context, chatID int64, limit int) ([]ConversationMessage, error) {
	_, span := r.tracer.Start(ctx, "conversation-repo.recent")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	messages := r.chats[chatID]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	out := make([]ConversationMessage, len(messages))
	copy(out, messages)
	return out, nil
}

// ClearConversation drops the transcript for one chat.
func (r *ConversationRepository) ClearConversation(ctx context.Context, chatID int64) error {
	_, span := r.tracer.Start(ctx, "conversation-repo.clear")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chats, chatID)
	return nil
}
