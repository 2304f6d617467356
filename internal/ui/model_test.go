package ui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/renderer"
	"github.com/dpshade/kubejs-editor/internal/service"
	"github.com/dpshade/kubejs-editor/internal/session"
)

func newTestModel(t *testing.T, clock session.Clock) (Model, *service.Service) {
	t.Helper()
	svc, err := service.NewService(service.Options{Dir: t.TempDir(), Clock: clock})
	require.NoError(t, err)

	m, err := NewModel(svc)
	require.NoError(t, err)
	m.newTermRenderer = func(wordWrap int) (*glamour.TermRenderer, error) {
		return renderer.NewTermRendererWithProfile(wordWrap, termenv.Ascii, false)
	}
	m.opener = session.OpenerFunc(func(string) error { return nil })
	m.copyText = func(string) (string, error) { return "Copied to clipboard!", nil }
	t.Cleanup(m.Close)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
	return next.(Model), svc
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msgs through Update in order
func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// typeText types s one rune at a time
func typeText(m Model, s string) Model {
	for _, r := range s {
		m = send(m, runes(string(r)))
	}
	return m
}

// clearBuffer empties the session and the widget
func clearBuffer(m Model) Model {
	m.controller.Edit(m.session, "")
	m.syncEditor()
	return m
}

func TestSidebarSkipsHeaders(t *testing.T) {
	m, _ := newTestModel(t, nil)

	id, ok := selectedTemplate(m.sidebar)
	require.True(t, ok)
	assert.Equal(t, "startup", id)

	// Up from the first template turns around at the top header
	m = send(m, tea.KeyMsg{Type: tea.KeyUp})
	id, _ = selectedTemplate(m.sidebar)
	assert.Equal(t, "startup", id)

	// Down past the last basic script steps over the Recipes header
	m = send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	id, _ = selectedTemplate(m.sidebar)
	assert.Equal(t, "craftingShapedRecipe", id)

	m = send(m, tea.KeyMsg{Type: tea.KeyUp})
	id, _ = selectedTemplate(m.sidebar)
	assert.Equal(t, "client", id)
}

func TestSidebarSelectionWithConfirmation(t *testing.T) {
	m, svc := newTestModel(t, nil)
	serverTpl, err := svc.GetTemplate("server")
	require.NoError(t, err)
	clientTpl, err := svc.GetTemplate("client")
	require.NoError(t, err)

	// The placeholder buffer loads without asking
	m = send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.confirm.IsActive())
	assert.Equal(t, serverTpl.Source, m.editor.Value())
	assert.Equal(t, "server", m.session.ActiveTemplate())
	assert.Equal(t, "Loaded server template", m.status.Text)

	// Edit the buffer, then pick another template
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlB})
	m = typeText(m, "x")
	assert.Equal(t, m.editor.Value(), m.session.Text())
	edited := m.session.Text()

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlB}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.confirm.IsActive())
	assert.Contains(t, m.View(), "Replace buffer?")

	// Declining keeps the edits and clears the highlight
	m = send(m, runes("n"))
	assert.False(t, m.confirm.IsActive())
	assert.Equal(t, edited, m.editor.Value())
	assert.Empty(t, m.session.ActiveTemplate())

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.confirm.IsActive())
	m = send(m, runes("y"))
	assert.Equal(t, clientTpl.Source, m.editor.Value())
	assert.Equal(t, clientTpl.Source, m.session.Text())
	assert.Equal(t, "client", m.session.ActiveTemplate())
	assert.Equal(t, "Loaded client template", m.status.Text)
}

func TestSearchLoadsWithoutConfirmation(t *testing.T) {
	m, svc := newTestModel(t, nil)
	smelting, err := svc.GetTemplate("smeltingRecipe")
	require.NoError(t, err)

	m.controller.Edit(m.session, "// edited")
	m.syncEditor()

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlF})
	require.True(t, m.search.IsActive())

	m = typeText(m, "s")
	assert.Empty(t, m.search.results)
	assert.Contains(t, m.View(), "Type at least 2 characters")

	m = typeText(m, "melt")
	require.NotEmpty(t, m.search.results)
	assert.Equal(t, "smeltingRecipe", m.search.results[0].TemplateID)
	assert.Contains(t, m.View(), "Recipes")

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.search.IsActive())
	assert.False(t, m.confirm.IsActive())
	assert.Equal(t, smelting.Source, m.editor.Value())
	assert.Empty(t, m.session.ActiveTemplate())

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlF}, runes("zz"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.search.IsActive())
	assert.Equal(t, smelting.Source, m.editor.Value())
}

func TestCompletionPopupInsertsText(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = clearBuffer(m)
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlB})

	m = typeText(m, "event.sme")
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlN})
	require.True(t, m.completions.IsActive())
	assert.Equal(t, "event.sme", m.completions.prefix)
	assert.Equal(t, "event.smelting", m.completions.items[0].Label)
	assert.Contains(t, m.View(), "event.smelting")

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.completions.IsActive())
	assert.Equal(t, "event.smelting(output, input)", m.editor.Value())
	assert.Equal(t, "event.smelting(output, input)", m.session.Text())

	m = clearBuffer(m)
	m = typeText(m, "zzz")
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.False(t, m.completions.IsActive())
	assert.Equal(t, `No completions for "zzz"`, m.status.Text)
}

func TestTabIndentsWithTabSize(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = clearBuffer(m)
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlB}, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "  ", m.session.Text())
	assert.True(t, m.editor.ShowLineNumbers)
}

func TestSaveWritesScript(t *testing.T) {
	m, svc := newTestModel(t, nil)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	path := filepath.Join(svc.Storage().ScriptsDir(), session.DefaultFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.session.Text(), string(data))
	assert.Equal(t, "Saved "+path, m.status.Text)
}

func TestLoadFile(t *testing.T) {
	m, svc := newTestModel(t, nil)

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, ViewFilePicker, m.viewMode)
	assert.Contains(t, m.View(), "Load script (.js)")
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewEditor, m.viewMode)

	script := filepath.Join(t.TempDir(), "ores.js")
	require.NoError(t, os.WriteFile(script, []byte("ServerEvents.tags('item', e => {})"), 0644))

	m = send(m, loadScriptCmd(svc.Storage(), script)())
	assert.Equal(t, "ServerEvents.tags('item', e => {})", m.editor.Value())
	assert.Equal(t, "ores.js", m.session.Filename())
	assert.Equal(t, "Loaded ores.js", m.status.Text)
	assert.Contains(t, m.View(), "ores.js")

	// A failed read leaves the buffer alone and lands in the error log
	m = send(m, loadScriptCmd(svc.Storage(), filepath.Join(t.TempDir(), "missing.js"))())
	assert.Equal(t, "ServerEvents.tags('item', e => {})", m.editor.Value())
	assert.True(t, m.status.IsError)
	assert.Contains(t, m.status.Text, "Failed to load missing.js")
	assert.FileExists(t, filepath.Join(svc.Storage().LogsDir(), "error.log"))
}

func TestCopyBuffer(t *testing.T) {
	m, _ := newTestModel(t, nil)
	var copied string
	m.copyText = func(text string) (string, error) { copied = text; return "Copied to clipboard!", nil }

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, session.Placeholder, copied)
	assert.Equal(t, "Copied to clipboard!", m.status.Text)

	m.copyText = func(string) (string, error) { return "", errors.New("no clipboard") }
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.True(t, m.status.IsError)
	assert.Contains(t, m.status.Text, "Copy failed")
}

func TestDocumentation(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	var opened string
	m.opener = session.OpenerFunc(func(url string) error { opened = url; return nil })
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, "https://kubejs.com/wiki/server-scripts", opened)
	assert.Equal(t, "Opening documentation: https://kubejs.com/wiki/server-scripts", m.status.Text)

	m.opener = session.OpenerFunc(func(string) error { return errors.New("no browser") })
	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.True(t, m.status.IsError)

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Equal(t, ViewDocs, m.viewMode)
	view := m.View()
	assert.Contains(t, view, "Documentation")
	assert.Contains(t, m.viewport.View(), "Server Script")

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewEditor, m.viewMode)
}

func TestPreviewHighlightsBuffer(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.controller.Edit(m.session, "// hello world\n")
	m.syncEditor()

	m = send(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, ViewPreview, m.viewMode)
	assert.Contains(t, m.viewport.View(), "hello world")
	assert.Contains(t, m.View(), "Preview")

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewEditor, m.viewMode)
}

func TestResizeFollowsLayout(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.False(t, m.cells.Stacked)
	assert.Equal(t, 30, m.cells.SidebarCols)
	assert.Equal(t, 170, m.cells.EditorCols)

	m = send(m, tea.WindowSizeMsg{Width: 60, Height: 80})
	assert.True(t, m.cells.Stacked)
	assert.Equal(t, 60, m.cells.EditorCols)
	assert.Contains(t, m.View(), "Templates")
}

func TestStatusRevertsToReady(t *testing.T) {
	clock := session.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	m, _ := newTestModel(t, clock)

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Loaded startup template", m.status.Text)

	clock.Advance(session.StatusTimeout)
	m = send(m, statusMsg(models.Ready()))
	assert.Equal(t, models.ReadyText, m.status.Text)
}

func TestForwardStatus(t *testing.T) {
	clock := session.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	board := session.NewStatusBoard(clock)
	defer board.Close()

	got := make(chan tea.Msg, 4)
	stop := forwardStatus(board, func(msg tea.Msg) { got <- msg })
	defer stop()

	board.Set("Saved as kubejs-script.js", false)
	select {
	case msg := <-got:
		assert.Equal(t, statusMsg{Text: "Saved as kubejs-script.js"}, msg)
	case <-time.After(time.Second):
		t.Fatal("status change was not forwarded")
	}

	clock.Advance(session.StatusTimeout)
	select {
	case msg := <-got:
		assert.Equal(t, statusMsg(models.Ready()), msg)
	case <-time.After(time.Second):
		t.Fatal("revert to Ready was not forwarded")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestCompletionPopupNavigation(t *testing.T) {
	items := []models.CompletionItem{
		{Label: "ServerEvents.recipes", InsertText: "ServerEvents.recipes(event => {})"},
		{Label: "ServerEvents.tags", InsertText: "ServerEvents.tags('item', event => {})"},
	}

	var p CompletionPopup
	p.Show("Serv", items)
	require.True(t, p.IsActive())

	// Non-key messages are ignored
	p.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, p.IsActive())

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, p.IsActive())

	item, prefix, ok := p.Chosen()
	require.True(t, ok)
	assert.Equal(t, "ServerEvents.tags", item.Label)
	assert.Equal(t, "Serv", prefix)

	_, _, ok = p.Chosen()
	assert.False(t, ok)

	p.Show("Serv", items)
	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, p.IsActive())
	_, _, ok = p.Chosen()
	assert.False(t, ok)
}
