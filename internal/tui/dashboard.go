package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-idx-bot/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dashboard message types.
type latestRecMsg *domain.Recommendation
type latestRecErrMsg struct{ err error }
type riskStateMsg struct {
	summary domain.RiskSummary
	status  domain.StopStatus
}
type quickStatsMsg domain.Statistics
type recentFormMsg []domain.TradeRecord
type dashTickMsg time.Time

const recentFormCount = 15

// DashboardModel is the Bubble Tea model for the live dashboard screen.
type DashboardModel struct {
	services Services
	rec      *domain.Recommendation
	summary  domain.RiskSummary
	status   domain.StopStatus
	haveRisk bool
	stats    domain.Statistics
	form     []domain.TradeRecord
	loading  bool
	err      error
	width    int
	height   int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{
		services: svc,
		loading:  true,
	}
}

// Init fires initial data fetch commands.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchLatestCmd(),
		m.fetchRiskCmd(),
		m.fetchStatsCmd(),
		m.fetchFormCmd(),
		m.tickCmd(),
	)
}

// Update handles incoming messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case latestRecMsg:
		// A nil payload means the cache is empty; keep whatever was
		// generated in this session rather than blanking the screen.
		if msg != nil {
			m.rec = (*domain.Recommendation)(msg)
		}
		m.loading = false
		m.err = nil
		return m, nil

	case latestRecErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case riskStateMsg:
		m.summary = msg.summary
		m.status = msg.status
		m.haveRisk = true
		return m, nil

	case quickStatsMsg:
		m.stats = domain.Statistics(msg)
		return m, nil

	case recentFormMsg:
		m.form = []domain.TradeRecord(msg)
		return m, nil

	case dashTickMsg:
		return m, tea.Batch(
			m.fetchLatestCmd(),
			m.fetchRiskCmd(),
			m.fetchStatsCmd(),
			m.fetchFormCmd(),
			m.tickCmd(),
		)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Generate):
			m.loading = true
			return m, m.generateCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, tea.Batch(
				m.fetchLatestCmd(),
				m.fetchRiskCmd(),
				m.fetchStatsCmd(),
				m.fetchFormCmd(),
			)
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.loading && m.rec == nil && !m.haveRisk {
		return SubtextStyle.Render("Loading signal state...")
	}
	if m.err != nil && m.rec == nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var sections []string

	// Signal + risk side by side
	signalSection := m.renderSignalSection()
	riskSection := m.renderRiskSection()

	signalWidth := m.width*2/3 - 2
	if signalWidth < 40 {
		signalWidth = 40
	}
	riskWidth := m.width - signalWidth - 4
	if riskWidth < 15 {
		riskWidth = 15
	}

	signalBox := BorderStyle.Width(signalWidth).Render(signalSection)
	riskBox := BorderStyle.Width(riskWidth).Render(riskSection)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, signalBox, riskBox)
	sections = append(sections, topRow)

	// Performance summary
	perfSection := m.renderPerformance()
	perfBox := BorderStyle.Width(m.width - 2).Render(perfSection)
	sections = append(sections, perfBox)

	sections = append(sections, SubtextStyle.Render("  [g] generate signal  [R] refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Recommendation returns the displayed recommendation (for testing).
func (m DashboardModel) Recommendation() *domain.Recommendation { return m.rec }

// Stats returns the displayed statistics (for testing).
func (m DashboardModel) Stats() domain.Statistics { return m.stats }

func (m DashboardModel) renderSignalSection() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Latest Signal"))

	if m.rec == nil {
		lines = append(lines, "")
		lines = append(lines, SubtextStyle.Render("  No signal yet. Press g to generate one."))
		return strings.Join(lines, "\n")
	}

	rec := m.rec
	dirStyle := DirectionUpStyle
	if rec.Signal.Direction == domain.DirectionDown {
		dirStyle = DirectionDownStyle
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  Direction    %s", dirStyle.Render(string(rec.Signal.Direction))))
	lines = append(lines, fmt.Sprintf("  Confidence   %.1f%%", rec.Signal.Confidence))
	lines = append(lines, fmt.Sprintf("  Amount       %s", FormatRupees(float64(rec.Amount))))
	lines = append(lines, fmt.Sprintf("  Duration     %d min", rec.Signal.Duration))
	lines = append(lines, fmt.Sprintf("  Risk         %s (score %d)",
		riskStyleFor(rec.Risk.Level).Render(rec.Risk.Level), rec.Risk.Score))
	lines = append(lines, fmt.Sprintf("  Entry        %s", rec.EntryAt.Format("15:04:05")))
	lines = append(lines, fmt.Sprintf("  Expiry       %s", rec.ExpiryAt.Format("15:04:05")))
	lines = append(lines, "")
	lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  RSI %.1f   MACD %+.3f   BB %+.2f   Volatility %s",
		rec.Signal.Indicators.RSI,
		rec.Signal.Indicators.MACD.Histogram,
		rec.Signal.Indicators.BollingerPosition,
		domain.VolatilityLabel(rec.Signal.Volatility))))

	if !rec.Risk.Recommended {
		lines = append(lines, WarnStyle.Render("  Confidence below the risk threshold, sit this one out"))
	}
	if rec.Anomaly != nil && rec.Anomaly.Anomalous {
		lines = append(lines, WarnStyle.Render(fmt.Sprintf("  Anomalous series (score %.2f)", rec.Anomaly.Score)))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderRiskSection() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Risk Limits"))

	if !m.haveRisk {
		lines = append(lines, "")
		lines = append(lines, SubtextStyle.Render("  Risk manager not available"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  Daily loss   %s / %s",
		FormatRupees(m.summary.DailyLoss), FormatRupees(m.summary.MaxDailyLoss)))
	lines = append(lines, fmt.Sprintf("  Loss streak  %d / %d",
		m.summary.LossStreak, m.summary.MaxConsecutiveLosses))
	lines = append(lines, "")
	if m.status.Stop {
		lines = append(lines, LossStyle.Render("  STOPPED: "+m.status.Reason))
	} else {
		lines = append(lines, ProfitStyle.Render("  "+m.status.Reason))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderPerformance() string {
	var lines []string
	lines = append(lines, HeaderStyle.Render("  Performance"))

	if m.stats.TotalTrades == 0 {
		lines = append(lines, SubtextStyle.Render("  No trades recorded"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("  Trades %d   Win rate %.1f%%   Net %s",
		m.stats.TotalTrades, m.stats.WinRate, FormatSignedRupees(m.stats.TotalProfit)))
	lines = append(lines, "")
	lines = append(lines, "  "+RenderOutcomeStrip(m.form, recentFormCount))

	return strings.Join(lines, "\n")
}

func (m DashboardModel) fetchLatestCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Signals == nil {
			return latestRecErrMsg{err: fmt.Errorf("signal service not available")}
		}
		rec, err := m.services.Signals.Latest(context.Background())
		if err != nil {
			return latestRecErrMsg{err: err}
		}
		return latestRecMsg(rec)
	}
}

func (m DashboardModel) generateCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Signals == nil {
			return latestRecErrMsg{err: fmt.Errorf("signal service not available")}
		}
		rec, err := m.services.Signals.Generate(context.Background())
		if err != nil {
			return latestRecErrMsg{err: err}
		}
		return latestRecMsg(&rec)
	}
}

func (m DashboardModel) fetchRiskCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Risk == nil {
			return nil // Non-critical
		}
		return riskStateMsg{
			summary: m.services.Risk.Summary(),
			status:  m.services.Risk.ShouldStop(),
		}
	}
}

func (m DashboardModel) fetchStatsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Trades == nil {
			return nil // Non-critical
		}
		return quickStatsMsg(m.services.Trades.Statistics(context.Background()))
	}
}

func (m DashboardModel) fetchFormCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Trades == nil {
			return nil // Non-critical
		}
		return recentFormMsg(m.services.Trades.Recent(context.Background(), recentFormCount))
	}
}

func (m DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}
