package risk

import (
	"fmt"
	"math"
	"sync"

	"crypto-idx-bot/internal/domain"
)

const (
	lossStreakSuffix = " (Loss Streak)"

	// Two consecutive losses tighten risk labels and halve position sizes.
	streakPenaltyAt = 2
)

type Limits struct {
	MaxDailyLoss         float64
	MaxConsecutiveLosses int
	RiskThreshold        float64
	MinTradeAmount       int
	MaxTradeAmount       int
	TradeStep            int
}

func DefaultLimits() Limits {
	return Limits{
		MaxDailyLoss:         2000,
		MaxConsecutiveLosses: 3,
		RiskThreshold:        70,
		MinTradeAmount:       100,
		MaxTradeAmount:       500,
		TradeStep:            50,
	}
}

func (l Limits) normalized() Limits {
	d := DefaultLimits()
	if l.MaxDailyLoss <= 0 {
		l.MaxDailyLoss = d.MaxDailyLoss
	}
	if l.MaxConsecutiveLosses <= 0 {
		l.MaxConsecutiveLosses = d.MaxConsecutiveLosses
	}
	if l.RiskThreshold <= 0 {
		l.RiskThreshold = d.RiskThreshold
	}
	if l.MinTradeAmount <= 0 {
		l.MinTradeAmount = d.MinTradeAmount
	}
	if l.MaxTradeAmount <= l.MinTradeAmount {
		l.MaxTradeAmount = d.MaxTradeAmount
	}
	if l.TradeStep <= 0 {
		l.TradeStep = d.TradeStep
	}
	return l
}

// Manager owns the process-lifetime risk counters: the consecutive loss
// streak and the accumulated daily loss. Counters move only through
// RecordOutcome and ResetDaily; all methods are safe for concurrent use.
type Manager struct {
	limits Limits

	mu         sync.Mutex
	lossStreak int
	dailyLoss  float64
}

func NewManager(limits Limits) *Manager {
	return &Manager{limits: limits.normalized()}
}

func (m *Manager) Limits() Limits {
	return m.limits
}

// Assess labels a signal with a risk tier derived from its confidence and the
// current loss streak.
func (m *Manager) Assess(sig domain.Signal) domain.RiskAssessment {
	m.mu.Lock()
	streak := m.lossStreak
	m.mu.Unlock()
	return Assess(sig.Confidence, streak, m.limits.RiskThreshold)
}

// PositionSize suggests a trade amount for the given confidence under the
// current loss streak.
func (m *Manager) PositionSize(confidence float64) int {
	m.mu.Lock()
	streak := m.lossStreak
	m.mu.Unlock()
	return SizePosition(confidence, streak, m.limits)
}

// RecordOutcome feeds a completed trade back into the counters. A loss
// extends the streak and adds its magnitude to the daily loss; a win resets
// the streak but never refunds accumulated losses.
func (m *Manager) RecordOutcome(trade domain.TradeRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trade.ProfitLoss < 0 {
		m.lossStreak++
		m.dailyLoss += math.Abs(trade.ProfitLoss)
		return
	}
	m.lossStreak = 0
}

// ShouldStop reports whether either hard limit has been breached. The daily
// loss limit takes precedence over the streak limit.
func (m *Manager) ShouldStop() domain.StopStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dailyLoss >= m.limits.MaxDailyLoss {
		return domain.StopStatus{Stop: true, Reason: "Daily loss limit reached"}
	}
	if m.lossStreak >= m.limits.MaxConsecutiveLosses {
		return domain.StopStatus{Stop: true, Reason: fmt.Sprintf("%d consecutive losses", m.limits.MaxConsecutiveLosses)}
	}
	return domain.StopStatus{Stop: false, Reason: "Trading allowed"}
}

// ResetDaily zeroes both counters. The caller owns the trading-day calendar;
// nothing here fires automatically on rollover.
func (m *Manager) ResetDaily() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyLoss = 0
	m.lossStreak = 0
}

func (m *Manager) Summary() domain.RiskSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.RiskSummary{
		DailyLoss:            m.dailyLoss,
		LossStreak:           m.lossStreak,
		MaxDailyLoss:         m.limits.MaxDailyLoss,
		MaxConsecutiveLosses: m.limits.MaxConsecutiveLosses,
	}
}

// Assess maps confidence onto a risk tier. An active loss streak bumps the
// score and tags the label.
func Assess(confidence float64, lossStreak int, threshold float64) domain.RiskAssessment {
	level, score := domain.RiskVeryHigh, 4
	switch {
	case confidence >= 85:
		level, score = domain.RiskLow, 1
	case confidence >= 75:
		level, score = domain.RiskMedium, 2
	case confidence >= 65:
		level, score = domain.RiskHigh, 3
	}
	if lossStreak >= streakPenaltyAt {
		score++
		level += lossStreakSuffix
	}
	return domain.RiskAssessment{
		Level:       level,
		Score:       score,
		Confidence:  confidence,
		Recommended: confidence >= threshold,
	}
}

// SizePosition maps confidence and loss streak onto a trade amount between
// the limits, rounded to the trade step.
func SizePosition(confidence float64, lossStreak int, limits Limits) int {
	limits = limits.normalized()

	multiplier := 0.2
	switch {
	case confidence >= 90:
		multiplier = 1.0
	case confidence >= 80:
		multiplier = 0.8
	case confidence >= 70:
		multiplier = 0.6
	case confidence >= 60:
		multiplier = 0.4
	}
	if lossStreak >= streakPenaltyAt {
		multiplier *= 0.5
	}

	amount := float64(limits.MinTradeAmount) + float64(limits.MaxTradeAmount-limits.MinTradeAmount)*multiplier
	step := float64(limits.TradeStep)
	amount = math.Round(amount/step) * step

	n := int(amount)
	if n < limits.MinTradeAmount {
		n = limits.MinTradeAmount
	}
	if n > limits.MaxTradeAmount {
		n = limits.MaxTradeAmount
	}
	return n
}
