package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const browseHelp = "enter open · backspace up · / filter · n new folder · c copy · m move to root · r rename · d delete · R refresh · q quit"

func (m Model) View() string {
	if m.mode == modePreview {
		return lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("preview"),
			m.viewport.View(),
			helpStyle.Render("esc back · arrows scroll"),
		)
	}

	header := "filebrowser"
	if m.listing != nil {
		header = m.listing.Dir
	}

	status := helpStyle.Render(browseHelp)
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}

	inputLine := ""
	switch m.mode {
	case modeFilter:
		inputLine = m.filter.View()
	case modePrompt:
		inputLine = m.input.View()
	}

	sections := []string{headerStyle.Render(header)}
	if inputLine != "" {
		sections = append(sections, inputLine)
	}
	sections = append(sections, m.list.View(), status)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
