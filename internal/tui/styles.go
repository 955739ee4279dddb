package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fjod/go_storefront/internal/notify"
)

type Styles struct {
	Header   lipgloss.Style
	Title    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Pane     lipgloss.Style
	Active   lipgloss.Style
	Footer   lipgloss.Style
	Levels   map[notify.Level]lipgloss.Style
}

func DefaultStyles() Styles {
	green := lipgloss.Color("#2E7D32")
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(green).Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(green),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9A825")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")),
		Pane:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5A5A5A")).Padding(0, 1),
		Active:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(green).Padding(0, 1),
		Footer:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")).MarginTop(1),
		Levels: map[notify.Level]lipgloss.Style{
			notify.LevelSuccess: lipgloss.NewStyle().Foreground(green),
			notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#1565C0")),
			notify.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF6C00")),
			notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828")),
		},
	}
}
