package tui

import "github.com/charmbracelet/lipgloss"

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styleWord      = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	stylePhonetic  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleCorrect   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleIncorrect = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleSelected  = lipgloss.NewStyle().Background(lipgloss.Color("22")).Foreground(lipgloss.Color("0"))
	styleSubtle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleCue       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Italic(true)
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleBox       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
)
