package bot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"crypto-idx-bot/internal/domain"
)

const welcomeMessage = `🚀 **Crypto IDX Trading Bot**

Welcome! This bot provides AI-powered trading signals for Crypto IDX.

**Available Commands:**
/start - Show this welcome message
/signal - Get next trading signal
/batch - Start batch trading mode
/stop - Cancel a running batch
/history - View trade history
/record - Record a trade outcome
/stats - Trading statistics
/summary - Today's trading summary
/export - Export history as CSV
/risk - Current risk status
/reset - Reset daily risk counters
/alerts - Manage proactive alerts
/ask - Ask the trading advisor
/help - Show detailed help

**Important:** Trading involves risk. Only trade what you can afford to lose.`

const helpMessage = `📊 **Help & Instructions**

**How to use:**
1. Use /signal to get individual trading signals
2. Use /batch to start 10-trade batch mode
3. Check /history to see past trades
4. Record outcomes with /record UP 300 180

**Enhanced Signal Features:**
- **Dynamic Duration**: 5, 10, or 15 minutes based on market volatility
- **Volatility Analysis**: Real-time market condition assessment
- **Expiry Time**: Exact trade closure time provided
- **Risk-Adjusted**: Duration optimized for current market conditions

**Risk Management:**
- Trade amounts: ₹100-₹500 per trade
- Low probability signals trigger warnings
- Automatic position sizing based on risk and volatility
- Trading halts after 3 straight losses or ₹2000 daily loss

**Signal Format:**
📈 **UP** or 📉 **DOWN**
⏰ **Entry & Expiry Time**: IST format
⏱️ **Trade Duration**: 5/10/15 minutes (dynamic)
💰 **Suggested Amount**: ₹100-₹500
📈 **Volatility**: Low/Medium/High
⚠️ **Risk Level**: Low/Medium/High`

// FormatRecommendation renders the full signal card sent for /signal, batch
// iterations and proactive alerts.
func FormatRecommendation(rec domain.Recommendation, loc *time.Location, riskThreshold float64) string {
	if loc == nil {
		loc = time.UTC
	}

	direction := "📉 DOWN"
	if rec.Signal.Direction == domain.DirectionUp {
		direction = "📈 UP"
	}
	entry := rec.EntryAt.In(loc).Format("15:04 MST")
	expiry := rec.ExpiryAt.In(loc).Format("15:04 MST")

	lines := []string{
		fmt.Sprintf("%s **Crypto IDX Signal**", direction),
		"",
		fmt.Sprintf("⏰ **Entry Time**: %s", entry),
		fmt.Sprintf("⏱️ **Trade Duration**: %d minutes", rec.Signal.Duration),
		fmt.Sprintf("🎯 **Expiry Time**: %s", expiry),
		fmt.Sprintf("💰 **Suggested Amount**: ₹%d", rec.Amount),
		fmt.Sprintf("📊 **Confidence**: %.1f%%", rec.Signal.Confidence),
		fmt.Sprintf("📈 **Volatility**: %s", domain.VolatilityLabel(rec.Signal.Volatility)),
		fmt.Sprintf("⚠️ **Risk Level**: %s", rec.Risk.Level),
		"",
	}

	if rec.Signal.Confidence < riskThreshold {
		lines = append(lines, fmt.Sprintf("⚠️ **WARNING**: Low confidence signal (%.1f%%)", rec.Signal.Confidence))
	} else {
		lines = append(lines, "✅ **Risk**: Acceptable")
	}
	if rec.Anomaly != nil && rec.Anomaly.Anomalous {
		lines = append(lines, fmt.Sprintf("🔍 **Anomaly**: unusual price action (score %.2f)", rec.Anomaly.Score))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("**Action**: Place %d-minute trade before %s", rec.Signal.Duration, entry),
	)
	return strings.Join(lines, "\n")
}

// FormatTrade renders one history entry.
func FormatTrade(t domain.TradeRecord, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	status, outcome := "✅", "Profit"
	if t.ProfitLoss < 0 {
		status, outcome = "❌", "Loss"
	}
	return fmt.Sprintf(
		"%s **%s** - ₹%d - %dmin\n📅 %s\n💰 **Result**: ₹%s %s",
		status, t.Direction, t.Amount, t.Duration,
		t.Timestamp.In(loc).Format("2006-01-02T15:04"),
		formatMoney(math.Abs(t.ProfitLoss)), outcome,
	)
}

func FormatStatistics(stats domain.Statistics) string {
	if stats.TotalTrades == 0 {
		return "📊 No trades recorded yet."
	}
	return strings.Join([]string{
		"📊 **Trading Statistics**",
		"",
		fmt.Sprintf("📈 **Total Trades**: %d", stats.TotalTrades),
		fmt.Sprintf("✅ **Wins**: %d | ❌ **Losses**: %d", stats.WinningTrades, stats.LosingTrades),
		fmt.Sprintf("🎯 **Win Rate**: %.2f%%", stats.WinRate),
		fmt.Sprintf("💰 **Total P/L**: ₹%s", formatMoney(stats.TotalProfit)),
		fmt.Sprintf("📊 **Average P/L**: ₹%s", formatMoney(stats.AverageProfit)),
		fmt.Sprintf("🏆 **Largest Win**: ₹%s", formatMoney(stats.LargestWin)),
		fmt.Sprintf("📉 **Largest Loss**: ₹%s", formatMoney(stats.LargestLoss)),
	}, "\n")
}

func FormatDailySummary(summary *domain.DailySummary) string {
	if summary == nil {
		return "📊 No trades today."
	}
	return strings.Join([]string{
		fmt.Sprintf("📅 **Daily Summary** (%s)", summary.Date),
		"",
		fmt.Sprintf("📈 **Trades**: %d", summary.Trades),
		fmt.Sprintf("💰 **P/L**: ₹%s", formatMoney(summary.Profit)),
		fmt.Sprintf("🎯 **Win Rate**: %.2f%%", summary.WinRate),
	}, "\n")
}

func FormatRiskStatus(summary domain.RiskSummary, stop domain.StopStatus) string {
	status := "🟢 " + stop.Reason
	if stop.Stop {
		status = "🔴 Trading halted: " + stop.Reason
	}
	return strings.Join([]string{
		"🛡️ **Risk Status**",
		"",
		fmt.Sprintf("📉 **Daily Loss**: ₹%s / ₹%s", formatMoney(summary.DailyLoss), formatMoney(summary.MaxDailyLoss)),
		fmt.Sprintf("🔻 **Loss Streak**: %d / %d", summary.LossStreak, summary.MaxConsecutiveLosses),
		"",
		status,
	}, "\n")
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
