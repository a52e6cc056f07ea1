package tui

import (
	"context"
	"fmt"
	"strings"

	"crypto-idx-bot/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// History explorer message types.
type historyMsg []domain.TradeRecord
type historyErrMsg struct{ err error }

const historyFetchLimit = 1000

var (
	directionOptions = []string{"ALL", "UP", "DOWN"}
	resultOptions    = []string{"ALL", "WIN", "LOSS"}
)

// HistoryModel is the Bubble Tea model for the trade history screen.
type HistoryModel struct {
	services     Services
	trades       []domain.TradeRecord
	directionIdx int
	resultIdx    int
	scrollOffset int
	loading      bool
	err          error
	width        int
	height       int
}

// NewHistoryModel creates a new trade history model.
func NewHistoryModel(svc Services) HistoryModel {
	return HistoryModel{
		services: svc,
		loading:  true,
	}
}

// Init fires initial trade fetch.
func (m HistoryModel) Init() tea.Cmd {
	return m.fetchTradesCmd()
}

// Update handles incoming messages.
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		m.trades = []domain.TradeRecord(msg)
		m.loading = false
		m.scrollOffset = 0
		m.err = nil
		return m, nil

	case historyErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.FilterDirection):
			m.directionIdx = (m.directionIdx + 1) % len(directionOptions)
			m.loading = true
			return m, m.fetchTradesCmd()

		case key.Matches(msg, DefaultKeyMap.FilterResult):
			m.resultIdx = (m.resultIdx + 1) % len(resultOptions)
			m.loading = true
			return m, m.fetchTradesCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchTradesCmd()

		case msg.String() == "j" || msg.String() == "down":
			maxVisible := m.visibleRows()
			if m.scrollOffset < len(m.trades)-maxVisible {
				m.scrollOffset++
			}
			return m, nil

		case msg.String() == "k" || msg.String() == "up":
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the trade history explorer.
func (m HistoryModel) View() string {
	var sections []string

	// Header
	sections = append(sections, HeaderStyle.Render("  Trade History"))
	sections = append(sections, "")

	// Filter chips
	sections = append(sections, m.renderFilters())
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Loading..."))
		return strings.Join(sections, "\n")
	}

	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	if len(m.trades) == 0 {
		sections = append(sections, SubtextStyle.Render("  No trades match the current filters"))
		return strings.Join(sections, "\n")
	}

	// Table header
	sections = append(sections, SubtextStyle.Render(
		fmt.Sprintf("  %-6s %-4s %8s %5s %-7s %10s  %s",
			"ID", "Dir", "Amount", "Dur", "Result", "P/L", "Time"),
	))

	// Table rows, newest first
	maxVisible := m.visibleRows()
	end := m.scrollOffset + maxVisible
	if end > len(m.trades) {
		end = len(m.trades)
	}

	for i := m.scrollOffset; i < end; i++ {
		sections = append(sections, "  "+FormatTrade(m.trades[i]))
	}

	// Scroll indicator
	if len(m.trades) > maxVisible {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  Showing %d-%d of %d (j/k to scroll)", m.scrollOffset+1, end, len(m.trades)),
		))
	}

	// Help
	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [d] direction  [r] result  [R] refresh  [j/k] scroll"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *HistoryModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// FilterState returns current filter indices (for testing).
func (m HistoryModel) FilterState() (directionIdx, resultIdx int) {
	return m.directionIdx, m.resultIdx
}

// TradeCount returns the number of loaded trades (for testing).
func (m HistoryModel) TradeCount() int { return len(m.trades) }

func (m HistoryModel) renderFilters() string {
	dirChip := m.renderChip("Direction", directionOptions, m.directionIdx)
	resChip := m.renderChip("Result", resultOptions, m.resultIdx)
	return "  " + lipgloss.JoinHorizontal(lipgloss.Top, dirChip, "  ", resChip)
}

func (m HistoryModel) renderChip(label string, options []string, active int) string {
	var parts []string
	parts = append(parts, SubtextStyle.Render(label+": "))
	for i, opt := range options {
		if i == active {
			parts = append(parts, ActiveTabStyle.Render(opt))
		} else {
			parts = append(parts, SubtextStyle.Render(opt))
		}
		parts = append(parts, " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m HistoryModel) fetchTradesCmd() tea.Cmd {
	dirFilter := ""
	if m.directionIdx > 0 && m.directionIdx < len(directionOptions) {
		dirFilter = directionOptions[m.directionIdx]
	}
	resFilter := ""
	if m.resultIdx > 0 && m.resultIdx < len(resultOptions) {
		resFilter = resultOptions[m.resultIdx]
	}

	return func() tea.Msg {
		if m.services.Trades == nil {
			return historyErrMsg{err: fmt.Errorf("trade service not available")}
		}
		trades := m.services.Trades.Recent(context.Background(), historyFetchLimit)

		// Newest first
		out := make([]domain.TradeRecord, 0, len(trades))
		for i := len(trades) - 1; i >= 0; i-- {
			t := trades[i]
			if dirFilter != "" && string(t.Direction) != dirFilter {
				continue
			}
			if resFilter != "" && string(t.Result) != resFilter {
				continue
			}
			out = append(out, t)
		}
		return historyMsg(out)
	}
}

func (m HistoryModel) visibleRows() int {
	// Account for header, filters, table header, help footer
	available := m.height - 10
	if available < 5 {
		return 5
	}
	return available
}
