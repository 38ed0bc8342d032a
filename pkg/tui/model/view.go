package model

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight = 1
	footerHeight = 2
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the TUI.
func (a App) View() string {
	if *a.width == 0 || a.height == 0 {
		return "loading..."
	}

	var body string
	if len(a.records) == 0 {
		body = dimStyle.Render("waiting for log lines...")
	} else {
		body = a.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), body, a.renderStatusBar())
}

func (a App) renderHeader() string {
	left := titleStyle.Render(a.title)
	if a.paused {
		left += " " + pausedStyle.Render(" PAUSED ")
	}
	right := dimStyle.Render(a.summary())

	gap := *a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a App) renderStatusBar() string {
	if a.mode == ModeSearch {
		return a.search.View() + "\n" + helpStyle.Render("enter:apply esc:cancel")
	}

	status := a.statusMsg
	if a.done {
		status = doneStyle.Render(status)
	} else if q := a.search.Value(); q != "" {
		status = dimStyle.Render("filter: " + q)
	}
	return status + "\n" + a.help.View(a.keys)
}
