package mcp

import (
	"fmt"
	"strings"
	"time"

	"crypto-idx-bot/internal/domain"
)

const (
	defaultTradeLimit = 50
	maxTradeLimit     = 1000
)

type signalGenerateInput struct{}

type signalGenerateOutput struct {
	Recommendation domain.Recommendation `json:"recommendation"`
}

type tradesListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of trades to return, max 1000"`
}

type tradesListOutput struct {
	Trades []domain.TradeRecord `json:"trades"`
}

type tradeRecordInput struct {
	Direction  string  `json:"direction" jsonschema:"trade direction: UP or DOWN"`
	Amount     int     `json:"amount" jsonschema:"trade amount in rupees"`
	Duration   int     `json:"duration,omitempty" jsonschema:"trade duration in minutes, default 5"`
	Result     string  `json:"result,omitempty" jsonschema:"optional WIN or LOSS, derived from profit_loss when omitted"`
	ProfitLoss float64 `json:"profit_loss" jsonschema:"realized profit (positive) or loss (negative)"`
}

type tradeRecordOutput struct {
	Trade domain.TradeRecord `json:"trade"`
	Stop  domain.StopStatus  `json:"stop"`
}

type statisticsGetInput struct{}

type statisticsGetOutput struct {
	Statistics domain.Statistics `json:"statistics"`
}

type riskStatusInput struct{}

type riskStatusOutput struct {
	Summary domain.RiskSummary `json:"summary"`
	Status  domain.StopStatus  `json:"status"`
}

type historyClearInput struct{}

type historyClearOutput struct {
	Cleared bool `json:"cleared"`
}

type dailySummaryOutput struct {
	Summary *domain.DailySummary `json:"summary"`
}

func normalizeTradeLimit(limit int) int {
	if limit <= 0 {
		return defaultTradeLimit
	}
	if limit > maxTradeLimit {
		return maxTradeLimit
	}
	return limit
}

func normalizeTradeRecord(in tradeRecordInput) (domain.TradeRecord, error) {
	direction, ok := domain.ParseDirection(in.Direction)
	if !ok {
		return domain.TradeRecord{}, fmt.Errorf("direction must be UP or DOWN")
	}
	if in.Amount <= 0 {
		return domain.TradeRecord{}, fmt.Errorf("amount must be a positive number")
	}
	duration := in.Duration
	if duration == 0 {
		duration = 5
	}
	if duration < 0 {
		return domain.TradeRecord{}, fmt.Errorf("duration must be a positive number of minutes")
	}

	result := domain.ResultLoss
	if in.ProfitLoss >= 0 {
		result = domain.ResultWin
	}
	if raw := strings.TrimSpace(in.Result); raw != "" {
		parsed, ok := domain.ParseTradeResult(raw)
		if !ok {
			return domain.TradeRecord{}, fmt.Errorf("result must be WIN or LOSS")
		}
		result = parsed
	}

	return domain.TradeRecord{
		Direction:  direction,
		Amount:     in.Amount,
		Duration:   duration,
		Result:     result,
		ProfitLoss: in.ProfitLoss,
	}, nil
}

func normalizeSummaryDate(raw string) (string, error) {
	date := strings.TrimSpace(raw)
	if date == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("date must be formatted as 2006-01-02")
	}
	return date, nil
}
