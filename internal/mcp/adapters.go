package mcp

import (
	"context"

	"crypto-idx-bot/internal/domain"
)

// SignalReader exposes signal generation and the cached latest recommendation.
type SignalReader interface {
	Generate(ctx context.Context) (domain.Recommendation, error)
	Latest(ctx context.Context) (*domain.Recommendation, error)
}

// TradeReaderWriter exposes the trade log operations.
type TradeReaderWriter interface {
	Record(ctx context.Context, trade domain.TradeRecord) (domain.TradeRecord, domain.StopStatus, error)
	Recent(ctx context.Context, n int) []domain.TradeRecord
	Statistics(ctx context.Context) domain.Statistics
	DailySummary(ctx context.Context, date string) *domain.DailySummary
	ClearHistory(ctx context.Context) error
}

// RiskReader exposes the risk counters.
type RiskReader interface {
	Summary() domain.RiskSummary
	ShouldStop() domain.StopStatus
}
