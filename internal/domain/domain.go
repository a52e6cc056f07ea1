package domain

import (
	"strings"
	"time"
)

// Symbol is the single fictitious instrument every signal is issued for.
const Symbol = "CRYPTO_IDX"

type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

func (d Direction) IsValid() bool {
	return d == DirectionUp || d == DirectionDown
}

// ParseDirection accepts user-supplied spellings ("up", "Down").
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DirectionUp):
		return DirectionUp, true
	case string(DirectionDown):
		return DirectionDown, true
	}
	return "", false
}

// Unknown stands in for any missing categorical field.
const Unknown = "Unknown"

type TradeResult string

const (
	ResultWin     TradeResult = "WIN"
	ResultLoss    TradeResult = "LOSS"
	ResultUnknown TradeResult = Unknown
)

func ParseTradeResult(s string) (TradeResult, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ResultWin):
		return ResultWin, true
	case string(ResultLoss):
		return ResultLoss, true
	}
	return ResultUnknown, false
}

type MACD struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// IndicatorSet carries the latest value of each indicator computed from one
// price series.
type IndicatorSet struct {
	RSI               float64 `json:"rsi"`
	MACD              MACD    `json:"macd"`
	BollingerPosition float64 `json:"bb_position"`
}

type Signal struct {
	Direction   Direction    `json:"direction"`
	Confidence  float64      `json:"confidence"`
	Duration    int          `json:"duration"`
	Volatility  float64      `json:"volatility"`
	Indicators  IndicatorSet `json:"indicators"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Base risk labels; an active loss streak appends " (Loss Streak)".
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskVeryHigh = "Very High"
)

type RiskAssessment struct {
	Level       string  `json:"risk_level"`
	Score       int     `json:"risk_score"`
	Confidence  float64 `json:"confidence"`
	Recommended bool    `json:"recommended"`
}

// Recommendation is the full sized, risk-annotated output of one signal
// request. Entry opens four minutes after generation; expiry follows the
// signal duration.
type Recommendation struct {
	Signal   Signal         `json:"signal"`
	Risk     RiskAssessment `json:"risk"`
	Amount   int            `json:"amount"`
	EntryAt  time.Time      `json:"entry_at"`
	ExpiryAt time.Time      `json:"expiry_at"`
	Anomaly  *AnomalyReport `json:"anomaly,omitempty"`
}

// AnomalyReport annotates a recommendation with an isolation-forest score for
// the underlying series. Advisory only.
type AnomalyReport struct {
	Score     float64 `json:"score"`
	Anomalous bool    `json:"anomalous"`
}

type TradeRecord struct {
	TradeID    int64       `json:"trade_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Direction  Direction   `json:"direction"`
	Amount     int         `json:"amount"`
	Duration   int         `json:"duration"`
	Result     TradeResult `json:"result"`
	ProfitLoss float64     `json:"profit_loss"`
}

// Won reports whether the trade counts as a win. Break-even counts as a win.
func (t TradeRecord) Won() bool {
	return t.ProfitLoss >= 0
}

type Statistics struct {
	TotalTrades   int     `json:"total_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalProfit   float64 `json:"total_profit"`
	AverageProfit float64 `json:"average_profit"`
	LargestWin    float64 `json:"largest_win"`
	LargestLoss   float64 `json:"largest_loss"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
}

type DailySummary struct {
	Date    string  `json:"date"`
	Trades  int     `json:"trades"`
	Profit  float64 `json:"profit"`
	WinRate float64 `json:"win_rate"`
}

type RiskSummary struct {
	DailyLoss            float64 `json:"daily_loss"`
	LossStreak           int     `json:"loss_streak"`
	MaxDailyLoss         float64 `json:"max_daily_loss"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
}

type StopStatus struct {
	Stop   bool   `json:"stop"`
	Reason string `json:"reason"`
}

// VolatilityLabel maps normalized volatility to the display bucket.
func VolatilityLabel(v float64) string {
	switch {
	case v < 0.3:
		return "Low"
	case v < 0.7:
		return "Medium"
	default:
		return "High"
	}
}
