package tui

import (
	"context"

	"crypto-idx-bot/internal/domain"
)

// SignalQuerier provides recommendation generation and lookup to the TUI.
type SignalQuerier interface {
	Generate(ctx context.Context) (domain.Recommendation, error)
	Latest(ctx context.Context) (*domain.Recommendation, error)
}

// TradeQuerier provides trade history and aggregates to the TUI.
type TradeQuerier interface {
	Recent(ctx context.Context, n int) []domain.TradeRecord
	Statistics(ctx context.Context) domain.Statistics
	DailySummary(ctx context.Context, date string) *domain.DailySummary
}

// AdvisorQuerier provides LLM advisor access to the TUI.
type AdvisorQuerier interface {
	Ask(ctx context.Context, chatID int64, message string) (string, error)
}

// RiskQuerier exposes the live risk counters to the TUI.
type RiskQuerier interface {
	Summary() domain.RiskSummary
	ShouldStop() domain.StopStatus
}

// SSHChatIDOffset is the base offset for generating synthetic chat IDs
// for SSH users. The final chat ID is SSHChatIDOffset - user ID.
// This avoids collisions with Telegram chat IDs.
const SSHChatIDOffset int64 = -1_000_000

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Signals  SignalQuerier
	Trades   TradeQuerier
	Advisor  AdvisorQuerier
	Risk     RiskQuerier
	UserID   int64
	Username string
}

// ChatID returns the synthetic chat ID for this SSH session.
func (s Services) ChatID() int64 {
	return SSHChatIDOffset - s.UserID
}
