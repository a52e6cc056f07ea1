package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"crypto-idx-bot/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Stats message types.
type statsSummaryMsg domain.Statistics
type statsDailyMsg []dailyPerf
type statsErrMsg struct{ err error }

const (
	statsViewOverview = 0
	statsViewDaily    = 1
)

const statsDailyDays = 30

// dailyPerf aggregates one day of trades for the daily breakdown.
type dailyPerf struct {
	Date    string
	Trades  int
	Wins    int
	Profit  float64
	WinRate float64 // 0..1
}

// StatsModel is the Bubble Tea model for the performance screen.
type StatsModel struct {
	services   Services
	stats      domain.Statistics
	daily      []dailyPerf
	activeView int
	loading    bool
	err        error
	width      int
	height     int
}

// NewStatsModel creates a new performance viewer model.
func NewStatsModel(svc Services) StatsModel {
	return StatsModel{
		services: svc,
		loading:  true,
	}
}

// Init fires initial data fetch commands.
func (m StatsModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchStatsCmd(),
		m.fetchDailyCmd(),
	)
}

// Update handles incoming messages.
func (m StatsModel) Update(msg tea.Msg) (StatsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsSummaryMsg:
		m.stats = domain.Statistics(msg)
		m.loading = false
		return m, nil

	case statsDailyMsg:
		m.daily = []dailyPerf(msg)
		return m, nil

	case statsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.ToggleView):
			m.activeView = 1 - m.activeView
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, tea.Batch(
				m.fetchStatsCmd(),
				m.fetchDailyCmd(),
			)
		}
	}

	return m, nil
}

// View renders the performance viewer.
func (m StatsModel) View() string {
	var sections []string

	// Header with view toggle
	viewLabel := "[Overview]  Daily"
	if m.activeView == statsViewDaily {
		viewLabel = " Overview  [Daily]"
	}
	sections = append(sections, HeaderStyle.Render("  Performance")+"  "+SubtextStyle.Render(viewLabel))
	sections = append(sections, "")

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Loading trade statistics..."))
		return strings.Join(sections, "\n")
	}

	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	if m.activeView == statsViewOverview {
		sections = append(sections, m.renderOverview()...)
	} else {
		sections = append(sections, m.renderDaily()...)
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [v] toggle view  [R] refresh"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *StatsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// ActiveView returns the current view index (for testing).
func (m StatsModel) ActiveView() int { return m.activeView }

// HasData returns whether any statistics are loaded.
func (m StatsModel) HasData() bool {
	return m.stats.TotalTrades > 0 || len(m.daily) > 0
}

func (m StatsModel) renderOverview() []string {
	var lines []string

	if m.stats.TotalTrades == 0 {
		lines = append(lines, SubtextStyle.Render("  No trades recorded yet. Record outcomes over Telegram or the REST API."))
		return lines
	}

	barWidth := m.barWidth()

	lines = append(lines, HeaderStyle.Render("  Win Rate (All-Time)"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  %s  (%d/%d)",
		RenderBarChart("win rate", m.stats.WinRate/100, barWidth),
		m.stats.WinningTrades, m.stats.TotalTrades))
	lines = append(lines, "")
	lines = append(lines, HeaderStyle.Render("  Totals"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("  Trades        %d", m.stats.TotalTrades))
	lines = append(lines, fmt.Sprintf("  Wins / Losses %d / %d", m.stats.WinningTrades, m.stats.LosingTrades))
	lines = append(lines, fmt.Sprintf("  Net P/L       %s", FormatSignedRupees(m.stats.TotalProfit)))
	lines = append(lines, fmt.Sprintf("  Average P/L   %s", FormatSignedRupees(m.stats.AverageProfit)))
	lines = append(lines, fmt.Sprintf("  Largest win   %s", FormatSignedRupees(m.stats.LargestWin)))
	lines = append(lines, fmt.Sprintf("  Largest loss  %s", FormatSignedRupees(m.stats.LargestLoss)))

	return lines
}

func (m StatsModel) renderDaily() []string {
	var lines []string

	if len(m.daily) == 0 {
		lines = append(lines, SubtextStyle.Render("  No daily history available."))
		return lines
	}

	lines = append(lines, HeaderStyle.Render(fmt.Sprintf("  Daily Performance (Last %d Days)", statsDailyDays)))
	lines = append(lines, "")

	barWidth := m.barWidth()

	count := len(m.daily)
	maxRows := m.height - 12
	if maxRows < 5 {
		maxRows = 5
	}
	if count > maxRows {
		count = maxRows
	}

	for i := 0; i < count; i++ {
		d := m.daily[i]
		bar := RenderBarChart(d.Date, d.WinRate, barWidth)
		lines = append(lines, fmt.Sprintf("  %s  (%d/%d)  %s", bar, d.Wins, d.Trades, FormatSignedRupees(d.Profit)))
	}

	return lines
}

func (m StatsModel) barWidth() int {
	w := m.width/3 - 5
	if w < 10 {
		w = 10
	}
	if w > 30 {
		w = 30
	}
	return w
}

func (m StatsModel) fetchStatsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Trades == nil {
			return statsErrMsg{err: fmt.Errorf("trade service not available")}
		}
		return statsSummaryMsg(m.services.Trades.Statistics(context.Background()))
	}
}

func (m StatsModel) fetchDailyCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Trades == nil {
			return nil // Non-critical
		}
		trades := m.services.Trades.Recent(context.Background(), historyFetchLimit)
		return statsDailyMsg(groupDaily(trades, statsDailyDays))
	}
}

// groupDaily buckets trades per calendar day, newest day first.
func groupDaily(trades []domain.TradeRecord, maxDays int) []dailyPerf {
	byDay := make(map[string]*dailyPerf)
	for _, t := range trades {
		date := t.Timestamp.Format("2006-01-02")
		d, ok := byDay[date]
		if !ok {
			d = &dailyPerf{Date: date}
			byDay[date] = d
		}
		d.Trades++
		d.Profit += t.ProfitLoss
		if t.Won() {
			d.Wins++
		}
	}

	out := make([]dailyPerf, 0, len(byDay))
	for _, d := range byDay {
		if d.Trades > 0 {
			d.WinRate = float64(d.Wins) / float64(d.Trades)
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if maxDays > 0 && len(out) > maxDays {
		out = out[:maxDays]
	}
	return out
}
