package tui

import (
	"os"
	"path"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filebrowser/store"
)

type fakeRenderer struct{}

func (fakeRenderer) Render(content string, width int) (string, error) {
	return "rendered:" + content, nil
}

func newTestModel(t *testing.T) (Model, string) {
	t.Helper()
	root := t.TempDir()
	st := store.New(&store.LocalFileSystem{}, root)
	return NewModel(st, fakeRenderer{}), root
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestInitLoadsRoot(t *testing.T) {
	m, root := newTestModel(t)

	require.NoError(t, os.WriteFile(path.Join(root, "a.txt"), []byte("0123456789"), 0644))
	require.NoError(t, os.Mkdir(path.Join(root, "docs"), 0750))

	msg := m.Init()()
	listing, ok := msg.(listingMsg)
	require.True(t, ok, "Init should produce a listing")
	assert.Equal(t, root, listing.listing.Dir)

	updated, _ := m.Update(msg)
	m = updated.(Model)
	assert.Len(t, m.list.Items(), 2)
}

func TestFilterKeysNarrowTheList(t *testing.T) {
	m, root := newTestModel(t)

	require.NoError(t, os.WriteFile(path.Join(root, "a.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(path.Join(root, "docs"), 0750))

	updated, _ := m.Update(m.Init()())
	m = updated.(Model)

	updated, _ = m.Update(keyMsg("/"))
	m = updated.(Model)
	assert.Equal(t, modeFilter, m.mode)

	updated, _ = m.Update(keyMsg("d"))
	m = updated.(Model)
	require.Len(t, m.list.Items(), 1)
	item := m.list.Items()[0].(entryItem)
	assert.Equal(t, "docs", item.entry.Name)

	// esc clears the filter
	updated, _ = m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyEsc}))
	m = updated.(Model)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Len(t, m.list.Items(), 2)
}

func TestPreviewRendersMarkdown(t *testing.T) {
	m, root := newTestModel(t)

	mdPath := path.Join(root, "readme.md")
	require.NoError(t, os.WriteFile(mdPath, []byte("# title"), 0644))
	txtPath := path.Join(root, "plain.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("just text"), 0644))

	updated, _ := m.Update(m.Init()())
	m = updated.(Model)

	md, ok := m.st.Find(mdPath)
	require.True(t, ok)
	msg := m.preview(md)()
	preview, ok := msg.(previewMsg)
	require.True(t, ok)
	assert.Equal(t, "rendered:# title", preview.content)

	txt, ok := m.st.Find(txtPath)
	require.True(t, ok)
	msg = m.preview(txt)()
	preview, ok = msg.(previewMsg)
	require.True(t, ok)
	assert.Equal(t, "just text", preview.content)
}

func TestErrorIsSurfaced(t *testing.T) {
	m, root := newTestModel(t)

	updated, _ := m.Update(m.Init()())
	m = updated.(Model)

	missing := &store.Entry{Name: "gone", Path: path.Join(root, "gone"), IsDir: true}
	msg := m.enter(missing)()
	failure, ok := msg.(errMsg)
	require.True(t, ok)

	updated, _ = m.Update(msg)
	m = updated.(Model)
	assert.Equal(t, failure.err, m.err)
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.0 KB", formatSize(1024))
	assert.Equal(t, "1.5 MB", formatSize(3*1024*1024/2))
}
