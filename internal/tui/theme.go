package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Profit and loss colors
	ProfitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	LossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	NeutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Signal direction colors
	DirectionUpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	DirectionDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	// Risk level colors
	RiskLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	RiskMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	RiskHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	SpinnerColor = lipgloss.Color("#7D56F4")

	// Chat styles
	UserMsgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	AssistantMsgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))

	// Outcome strip colors
	WinCellColor     = lipgloss.Color("#00FF00")
	LossCellColor    = lipgloss.Color("#FF0000")
	NeutralCellColor = lipgloss.Color("#555555")

	// Performance bar colors
	BarGoodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	BarOkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	BarBadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)
