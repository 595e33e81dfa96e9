package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/sentibot/internal/analysis/sentiment"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)

	botBubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("252")).
			Padding(0, 1)

	failedMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	pendingMarkStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("242")).
				Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 2).
			Width(56)

	noticeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2).
			Width(48)

	bandStyles = map[sentiment.Band]lipgloss.Style{
		sentiment.Positive:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		sentiment.Neutral:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		sentiment.Negative:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		sentiment.Unavailable: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

func fieldLabel(label string, focused bool) string {
	style := lipgloss.NewStyle().Width(22)
	if focused {
		style = style.Bold(true).Foreground(lipgloss.Color("39"))
	} else {
		style = style.Foreground(lipgloss.Color("252"))
	}
	return style.Render(label)
}
