package tui

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"filebrowser/store"
)

type mode int

const (
	modeBrowse mode = iota
	modeFilter
	modePrompt
	modePreview
)

type promptKind int

const (
	promptRename promptKind = iota
	promptNewFolder
)

// entryItem adapts a store entry to the list component.
type entryItem struct {
	entry *store.Entry
}

func (i entryItem) Title() string {
	if i.entry.IsDir {
		return i.entry.Name + "/"
	}
	return i.entry.Name
}

func (i entryItem) Description() string {
	if i.entry.IsDir {
		return "directory"
	}
	modified := time.UnixMilli(i.entry.ModTime).Format("2006-01-02 15:04")
	return fmt.Sprintf("%s  %s", formatSize(i.entry.Size), modified)
}

func (i entryItem) FilterValue() string { return i.entry.Name }

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// Messages produced by store commands.
type listingMsg struct {
	listing *store.Listing
}
type previewMsg struct {
	title   string
	content string
}
type errMsg struct {
	err error
}

// Model drives the terminal browser over one store.
type Model struct {
	st       *store.Store
	renderer MarkdownRenderer

	mode    mode
	prompt  promptKind
	pending *store.Entry

	list     list.Model
	filter   textinput.Model
	input    textinput.Model
	viewport viewport.Model

	listing *store.Listing
	err     error

	width  int
	height int
}

func NewModel(st *store.Store, renderer MarkdownRenderer) Model {
	filter := textinput.New()
	filter.Placeholder = "filter by name"
	filter.Prompt = "/"

	input := textinput.New()

	delegate := list.NewDefaultDelegate()
	entries := list.New(nil, delegate, 80, 20)
	entries.Title = ""
	entries.SetShowTitle(false)
	entries.SetFilteringEnabled(false)
	entries.SetShowHelp(false)
	entries.SetShowStatusBar(false)

	vp := viewport.New(80, 20)

	return Model{
		st:       st,
		renderer: renderer,
		list:     entries,
		filter:   filter,
		input:    input,
		viewport: vp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadRoot()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4) // header, filter, status
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3
		return m, nil

	case listingMsg:
		m.listing = msg.listing
		m.err = nil
		m.setItems()
		return m, nil

	case previewMsg:
		m.mode = modePreview
		m.viewport.SetContent(msg.content)
		m.viewport.GotoTop()
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeFilter:
		return m.handleFilterKey(msg)
	case modePrompt:
		return m.handlePromptKey(msg)
	case modePreview:
		return m.handlePreviewKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "enter":
		e := m.selected()
		if e == nil {
			return m, nil
		}
		if e.IsDir {
			return m, m.enter(e)
		}
		return m, m.preview(e)

	case "left", "backspace":
		return m, m.goUp()

	case "/":
		m.mode = modeFilter
		m.filter.Focus()
		return m, textinput.Blink

	case "r":
		e := m.selected()
		if e == nil {
			return m, nil
		}
		m.mode = modePrompt
		m.prompt = promptRename
		m.pending = e
		m.input.Placeholder = "new name"
		m.input.SetValue(e.Name)
		m.input.Focus()
		return m, textinput.Blink

	case "n":
		m.mode = modePrompt
		m.prompt = promptNewFolder
		m.pending = nil
		m.input.Placeholder = store.DefaultFolderName
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "c":
		if e := m.selected(); e != nil {
			return m, m.copyEntry(e)
		}
		return m, nil

	case "m":
		if e := m.selected(); e != nil {
			return m, m.moveToRoot(e)
		}
		return m, nil

	case "d":
		if e := m.selected(); e != nil {
			return m, m.deleteEntry(e)
		}
		return m, nil

	case "R":
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeBrowse
		m.filter.Blur()
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.filter.Blur()
		m.filter.SetValue("")
		m.listing = m.st.SetFilter("")
		m.setItems()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.listing = m.st.SetFilter(m.filter.Value())
	m.setItems()
	return m, cmd
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		prompt := m.prompt
		pending := m.pending
		m.mode = modeBrowse
		m.input.Blur()

		switch prompt {
		case promptRename:
			if pending != nil {
				return m, m.rename(pending, value)
			}
		case promptNewFolder:
			return m, m.createFolder(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.mode = modeBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) setItems() {
	if m.listing == nil {
		return
	}

	visible := m.listing.Visible()
	items := make([]list.Item, 0, len(visible))
	for _, e := range visible {
		items = append(items, entryItem{entry: e})
	}
	m.list.SetItems(items)
}

func (m Model) selected() *store.Entry {
	item, ok := m.list.SelectedItem().(entryItem)
	if !ok {
		return nil
	}
	return item.entry
}

// Store commands. Each runs one store operation off the update loop and
// reports back with a listing, a preview or an error.

func (m Model) loadRoot() tea.Cmd {
	return func() tea.Msg {
		listing, err := m.st.SetRoot()
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{listing}
	}
}

func (m Model) enter(e *store.Entry) tea.Cmd {
	return func() tea.Msg {
		listing, err := m.st.Enter(e)
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{listing}
	}
}

func (m Model) goUp() tea.Cmd {
	listing := m.listing
	return func() tea.Msg {
		if listing == nil || listing.Dir == m.st.Root() {
			return nil
		}
		parent := &store.Entry{
			Name:  path.Base(path.Dir(listing.Dir)),
			Path:  path.Dir(listing.Dir),
			IsDir: true,
		}
		next, err := m.st.Enter(parent)
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{next}
	}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		listing, err := m.st.Refresh()
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{listing}
	}
}

func (m Model) preview(e *store.Entry) tea.Cmd {
	width := m.width
	return func() tea.Msg {
		content, err := m.st.Read(e)
		if err != nil {
			return errMsg{err}
		}

		if strings.EqualFold(path.Ext(e.Name), ".md") {
			rendered, err := m.renderer.Render(content, width)
			if err == nil {
				content = rendered
			}
		}
		return previewMsg{title: e.Name, content: content}
	}
}

func (m Model) copyEntry(e *store.Entry) tea.Cmd {
	return func() tea.Msg {
		listing, err := m.st.Copy(e)
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{listing}
	}
}

func (m Model) moveToRoot(e *store.Entry) tea.Cmd {
	return func() tea.Msg {
		listing, err := m.st.Move(e, "")
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{listing}
	}
}

func (m Model) rename(e *store.Entry, newName string) tea.Cmd {
	return func() tea.Msg {
		listing, err := m.st.Rename(e, newName)
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{listing}
	}
}

func (m Model) deleteEntry(e *store.Entry) tea.Cmd {
	return func() tea.Msg {
		listing, err := m.st.Delete(e)
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{listing}
	}
}

func (m Model) createFolder(name string) tea.Cmd {
	return func() tea.Msg {
		listing, err := m.st.CreateFolder(name)
		if err != nil {
			return errMsg{err}
		}
		return listingMsg{listing}
	}
}
