package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"crypto-idx-bot/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

// FormatTrade renders a trade record as a single line.
func FormatTrade(t domain.TradeRecord) string {
	dirStyle := NeutralStyle
	switch t.Direction {
	case domain.DirectionUp:
		dirStyle = DirectionUpStyle
	case domain.DirectionDown:
		dirStyle = DirectionDownStyle
	}

	resStyle := NeutralStyle
	switch t.Result {
	case domain.ResultWin:
		resStyle = ProfitStyle
	case domain.ResultLoss:
		resStyle = LossStyle
	}

	return fmt.Sprintf("#%-5d %s %8s %4dm %s %10s  %s",
		t.TradeID,
		dirStyle.Render(fmt.Sprintf("%-4s", t.Direction)),
		FormatRupees(float64(t.Amount)),
		t.Duration,
		resStyle.Render(fmt.Sprintf("%-7s", t.Result)),
		FormatSignedRupees(t.ProfitLoss),
		t.Timestamp.Format(time.RFC822),
	)
}

// RenderOutcomeStrip renders recent trade results as a row of colored cells,
// oldest first.
func RenderOutcomeStrip(trades []domain.TradeRecord, max int) string {
	if len(trades) == 0 {
		return SubtextStyle.Render("No trades yet")
	}
	if max < 1 {
		max = 10
	}
	if len(trades) > max {
		trades = trades[len(trades)-max:]
	}

	var cells []string
	for _, t := range trades {
		bg := NeutralCellColor
		label := "?"
		switch t.Result {
		case domain.ResultWin:
			bg = WinCellColor
			label = "W"
		case domain.ResultLoss:
			bg = LossCellColor
			label = "L"
		}

		cell := lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Width(3).
			Align(lipgloss.Center).
			Render(label)
		cells = append(cells, cell)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// RenderBarChart renders an ASCII bar for a 0..1 ratio.
func RenderBarChart(label string, ratio float64, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	filled := int(math.Round(ratio * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	style := BarGoodStyle
	if ratio < 0.4 {
		style = BarBadStyle
	} else if ratio < 0.6 {
		style = BarOkStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%-12s %s %.1f%%", label, bar, ratio*100)
}

// FormatRupees renders a rupee amount, comma-grouped above one thousand.
func FormatRupees(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if whole, frac, ok := strings.Cut(s, "."); ok {
		s = addCommas(whole) + "." + frac
	} else {
		s = addCommas(s)
	}
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

// FormatSignedRupees always carries an explicit sign, for P/L columns.
func FormatSignedRupees(v float64) string {
	if v >= 0 {
		return "+" + FormatRupees(v)
	}
	return FormatRupees(v)
}

func riskStyleFor(level string) lipgloss.Style {
	switch {
	case strings.HasPrefix(level, domain.RiskLow):
		return RiskLowStyle
	case strings.HasPrefix(level, domain.RiskMedium):
		return RiskMedStyle
	default:
		return RiskHighStyle
	}
}

func addCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var result strings.Builder
	for i, ch := range s {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(ch)
	}
	return result.String()
}
