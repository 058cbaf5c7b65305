// Package tui is a terminal front-end over a store: it consumes entry
// paths and text content only, never touching the filesystem itself.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"filebrowser/store"
)

// Run blocks until the browser exits.
func Run(st *store.Store) error {
	m := NewModel(st, NewGlamourRenderer())
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
