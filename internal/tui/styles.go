package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("205")
	colorSurface = lipgloss.Color("236")
	colorDim     = lipgloss.Color("240")
	colorCoin    = lipgloss.Color("220")
	colorDanger  = lipgloss.Color("196")
	colorWarning = lipgloss.Color("214")
	colorReward  = lipgloss.Color("42")
)

var (
	tabStyle         = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle   = tabStyle.Foreground(colorAccent).Background(colorSurface).Bold(true)
	inactiveTabStyle = tabStyle.Foreground(colorDim)
	coinStyle        = tabStyle.Foreground(colorCoin).Bold(true)

	dangerStyle  = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Italic(true)

	// reward notices, stacked side by side under the active tab
	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorReward).
			Padding(0, 1)
	noticeTitleStyle = lipgloss.NewStyle().Foreground(colorReward).Bold(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)
