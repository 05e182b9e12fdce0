package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the dashboard.
type Styles struct {
	Welcome    lipgloss.Style
	Balance    lipgloss.Style
	Deposit    lipgloss.Style
	Withdrawal lipgloss.Style
	Muted      lipgloss.Style
	Form       lipgloss.Style
	FormTitle  lipgloss.Style
	Movements  lipgloss.Style
	Status     lipgloss.Style
	Timer      lipgloss.Style
}

func defaultStyles() Styles {
	return Styles{
		Welcome:    lipgloss.NewStyle().Bold(true),
		Balance:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#444444")),
		Deposit:    lipgloss.NewStyle().Foreground(lipgloss.Color("#39b385")),
		Withdrawal: lipgloss.NewStyle().Foreground(lipgloss.Color("#e52a5a")),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Form:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		FormTitle:  lipgloss.NewStyle().Bold(true),
		Movements:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb003")),
		Timer:      lipgloss.NewStyle().Bold(true),
	}
}
