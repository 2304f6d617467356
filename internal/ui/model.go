package ui

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/dpshade/kubejs-editor/internal/clipboard"
	"github.com/dpshade/kubejs-editor/internal/completion"
	"github.com/dpshade/kubejs-editor/internal/config"
	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/grammar"
	"github.com/dpshade/kubejs-editor/internal/layout"
	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/renderer"
	"github.com/dpshade/kubejs-editor/internal/service"
	"github.com/dpshade/kubejs-editor/internal/session"
	"github.com/dpshade/kubejs-editor/internal/storage"
)

// ViewMode is the screen shown below the header
type ViewMode int

const (
	ViewEditor ViewMode = iota
	ViewPreview
	ViewDocs
	ViewFilePicker
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusEditor
)

// header, status bar and help line
const chromeRows = 3

// statusMsg wakes the model when the status line changes outside Update
type statusMsg models.StatusMessage

// fileLoadedMsg carries a script read by the file picker
type fileLoadedMsg struct {
	name    string
	content string
	err     error
}

// Model represents the TUI application state
type Model struct {
	service    *service.Service
	controller *session.Controller
	session    *session.Session
	cfg        config.EditorConfig
	viewMode   ViewMode
	focus      focusArea

	// UI components
	sidebar    list.Model
	editor     textarea.Model
	viewport   viewport.Model
	filepicker filepicker.Model
	help       help.Model
	keys       KeyMap

	// Modals
	confirm     *ConfirmModal
	search      *SearchModal
	completions *CompletionPopup

	status     models.StatusMessage
	errHandler *apperrors.TUIErrorHandler
	viewTitle  string

	// Side effects, swapped out in tests
	opener          session.Opener
	copyText        func(string) (string, error)
	newTermRenderer func(wordWrap int) (*glamour.TermRenderer, error)
	scriptsDir      string

	// Window dimensions
	cells  layout.Cells
	width  int
	height int
}

// NewModel creates the editor with a fresh session. The configured default
// template, if any, is loaded straight away.
func NewModel(svc *service.Service) (*Model, error) {
	cfg := svc.Config()
	initializeColors(cfg.IsDark())

	store := svc.Storage()
	if err := store.InitLibrary(); err != nil {
		return nil, fmt.Errorf("failed to initialize data directory: %w", err)
	}

	controller := svc.Controller()
	s := controller.NewSession(cfg.DefaultTemplate)

	ta := textarea.New()
	ta.Placeholder = session.Placeholder
	ta.ShowLineNumbers = cfg.LineNumbers
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetValue(s.Text())

	// Create viewport for preview and docs
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	fp := filepicker.New()
	fp.AllowedTypes = []string{session.ScriptExt}
	fp.CurrentDirectory = store.ScriptsDir()
	fp.ShowPermissions = false

	sidebar := newSidebar(svc.Categories())
	sidebar.SetDelegate(sidebarDelegate{active: s.ActiveTemplate()})

	m := &Model{
		service:         svc,
		controller:      controller,
		session:         s,
		cfg:             cfg,
		viewMode:        ViewEditor,
		focus:           focusSidebar,
		sidebar:         sidebar,
		editor:          ta,
		viewport:        vp,
		filepicker:      fp,
		help:            help.New(),
		keys:            keys,
		confirm:         NewConfirmModal(),
		search:          NewSearchModal(svc.SearchTemplates),
		completions:     &CompletionPopup{},
		status:          s.Status().Current(),
		errHandler:      apperrors.NewTUIErrorHandler(false, store.LogsDir()),
		opener:          clipboard.BrowserOpener{},
		copyText:        clipboard.CopyWithFallback,
		newTermRenderer: renderer.NewTermRenderer,
		scriptsDir:      store.ScriptsDir(),
	}
	m.resize(80, 24)
	return m, nil
}

// Session returns the editing session behind the model
func (m Model) Session() *session.Session {
	return m.session
}

// Close stops the session's status timer
func (m Model) Close() {
	m.session.Close()
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.status = next.session.Status().Current()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		return m, nil

	case fileLoadedMsg:
		m.finishLoad(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Blink and directory listing messages
	var cmd tea.Cmd
	if m.viewMode == ViewFilePicker {
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd
	}
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// Modals take every key while open
	if m.confirm.IsActive() {
		m.confirm.Update(msg)
		if accepted, ok := m.confirm.Answer(); ok {
			if accepted {
				m.controller.ConfirmSelection(m.session)
			} else {
				m.controller.CancelSelection(m.session)
			}
			m.syncEditor()
		}
		return m, nil
	}

	if m.search.IsActive() {
		cmd := m.search.Update(msg)
		if id, ok := m.search.Chosen(); ok {
			// Search results skip the confirmation
			m.controller.LoadTemplate(m.session, id)
			m.syncEditor()
		}
		return m, cmd
	}

	if m.completions.IsActive() {
		m.completions.Update(msg)
		if item, prefix, ok := m.completions.Chosen(); ok {
			m.insertCompletion(item, prefix)
		}
		return m, nil
	}

	switch m.viewMode {
	case ViewPreview, ViewDocs:
		if key.Matches(msg, m.keys.Back) {
			m.viewMode = ViewEditor
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ViewFilePicker:
		if key.Matches(msg, m.keys.Back) {
			m.viewMode = ViewEditor
			return m, nil
		}
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		if ok, path := m.filepicker.DidSelectFile(msg); ok {
			m.viewMode = ViewEditor
			return m, loadScriptCmd(m.service.Storage(), path)
		}
		if ok, path := m.filepicker.DidSelectDisabledFile(msg); ok {
			m.controller.SetStatus(m.session, fmt.Sprintf("%s is not a %s file", filepath.Base(path), session.ScriptExt), true)
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.search.SetActive(true)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Focus):
		m.toggleFocus()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.saveFile()
		return m, nil

	case key.Matches(msg, m.keys.Load):
		m.viewMode = ViewFilePicker
		return m, m.filepicker.Init()

	case key.Matches(msg, m.keys.Copy):
		m.copyBuffer()
		return m, nil

	case key.Matches(msg, m.keys.Preview):
		m.viewMode = ViewPreview
		m.renderPreview()
		return m, nil

	case key.Matches(msg, m.keys.Docs):
		m.viewMode = ViewDocs
		m.renderDocsCard()
		return m, nil

	case key.Matches(msg, m.keys.OpenDocs):
		if _, err := m.controller.OpenDocumentation(m.session, m.opener); err != nil {
			m.errHandler.HandleError(err)
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.updateSidebar(msg)
	}
	return m.updateEditor(msg)
}

func (m Model) updateSidebar(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Enter) {
		id, ok := selectedTemplate(m.sidebar)
		if !ok {
			return m, nil
		}
		if m.controller.SelectTemplate(m.session, id) {
			m.confirm.Show(session.ConfirmPrompt)
		}
		m.syncEditor()
		return m, nil
	}

	dir := 1
	if key.Matches(msg, m.keys.Up) {
		dir = -1
	}
	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	skipHeaders(&m.sidebar, dir)
	return m, cmd
}

func (m Model) updateEditor(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Complete):
		m.openCompletions()
		return m, nil
	case key.Matches(msg, m.keys.Indent):
		m.editor.InsertString(strings.Repeat(" ", m.cfg.TabSize))
		m.controller.Edit(m.session, m.editor.Value())
		return m, nil
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if m.editor.Value() != before {
		m.controller.Edit(m.session, m.editor.Value())
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == focusSidebar {
		m.focus = focusEditor
		m.editor.Focus()
		return
	}
	m.focus = focusSidebar
	m.editor.Blur()
}

// syncEditor copies the session into the widgets after the controller
// changed it
func (m *Model) syncEditor() {
	if text := m.session.Text(); text != m.editor.Value() {
		m.editor.SetValue(text)
	}
	m.sidebar.SetDelegate(sidebarDelegate{active: m.session.ActiveTemplate()})
}

// cursorOffset returns the cursor position in runes from the start of the
// buffer
func (m Model) cursorOffset() int {
	lines := strings.Split(m.editor.Value(), "\n")
	row := m.editor.Line()
	offset := 0
	for i := 0; i < row && i < len(lines); i++ {
		offset += len([]rune(lines[i])) + 1
	}
	info := m.editor.LineInfo()
	return offset + info.StartColumn + info.ColumnOffset
}

func (m *Model) openCompletions() {
	prefix := completion.WordBefore(m.editor.Value(), m.cursorOffset())
	items := completion.Narrow(m.service.Completions(), prefix)
	if len(items) == 0 {
		m.controller.SetStatus(m.session, fmt.Sprintf("No completions for %q", prefix), false)
		return
	}
	m.completions.Show(prefix, items)
}

// insertCompletion replaces prefix before the cursor with the item's text
func (m *Model) insertCompletion(item models.CompletionItem, prefix string) {
	for range []rune(prefix) {
		m.editor, _ = m.editor.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m.editor.InsertString(item.InsertText)
	m.controller.Edit(m.session, m.editor.Value())
}

func (m *Model) saveFile() {
	artifact := m.controller.SaveFile(m.session)
	path, err := m.service.Storage().WriteScript(m.scriptsDir, artifact)
	if err != nil {
		m.reportError("Failed to save", err)
		return
	}
	m.controller.SetStatus(m.session, fmt.Sprintf("Saved %s", path), false)
}

func (m *Model) copyBuffer() {
	text, err := m.copyText(m.session.Text())
	if err != nil {
		m.reportError("Copy failed", err)
		return
	}
	m.controller.SetStatus(m.session, text, false)
}

// loadScriptCmd reads path off the update loop
func loadScriptCmd(store *storage.Storage, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		content, err := store.ReadScript(ctx, path)
		return fileLoadedMsg{name: filepath.Base(path), content: content, err: err}
	}
}

func (m *Model) finishLoad(msg fileLoadedMsg) {
	if msg.err != nil {
		m.reportError(fmt.Sprintf("Failed to load %s", msg.name), msg.err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.controller.LoadFile(ctx, m.session, msg.name, strings.NewReader(msg.content)); err != nil {
		m.errHandler.HandleError(err)
		return
	}
	m.syncEditor()
}

// reportError logs err and shows it on the status line
func (m *Model) reportError(prefix string, err error) {
	err = m.errHandler.HandleError(err)
	glyph, _ := m.errHandler.GetErrorStyle(err)
	m.controller.SetStatus(m.session, fmt.Sprintf("%s %s: %s", glyph, prefix, m.errHandler.FormatError(err)), true)
}

// wrapWidth is the column text is wrapped at, 0 when word wrap is off
func (m Model) wrapWidth() int {
	if m.cfg.WordWrap == "off" {
		return 0
	}
	return max(m.viewport.Width-2, 20)
}

// renderPreview highlights the buffer with the KubeJS grammar
func (m *Model) renderPreview() {
	m.viewTitle = "Preview"
	text := m.session.Text()

	var buf bytes.Buffer
	content := text
	if err := grammar.Highlight(&buf, text, "terminal256", m.cfg.ChromaStyle()); err == nil {
		content = buf.String()
	} else {
		m.errHandler.HandleError(err)
	}
	if w := m.wrapWidth(); w > 0 {
		content = wrap.String(content, w)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// renderDocsCard shows the active template's card and the API reference
func (m *Model) renderDocsCard() {
	m.viewTitle = "Documentation"
	url := m.controller.ResolveDocumentationURL(m.session)

	var md strings.Builder
	if entry, err := m.service.GetTemplate(m.session.ActiveTemplate()); err == nil {
		md.WriteString(renderer.NewRenderer(entry, url).RenderMarkdown())
	} else {
		fmt.Fprintf(&md, "# KubeJS Documentation\n\n**Documentation:** <%s>\n", url)
	}
	md.WriteString("\n## API Reference\n\n")
	md.WriteString(renderer.RenderCompletionDocs(m.service.Completions()))

	tr, err := m.newTermRenderer(m.wrapWidth())
	if err != nil {
		m.errHandler.HandleError(err)
	}
	m.viewport.SetContent(renderer.Render(tr, md.String()))
	m.viewport.GotoTop()
}

// resize lays the panes out for a width x height terminal
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.cells = layout.ForTerminal(width, height, chromeRows)

	// Panes carry a one-cell border
	m.sidebar.SetSize(max(m.cells.SidebarCols-2, 1), max(m.cells.SidebarRows-2, 1))
	m.editor.SetWidth(max(m.cells.EditorCols-2, 1))
	m.editor.SetHeight(max(m.cells.EditorRows-2, 1))

	m.viewport.Width = max(width, 1)
	m.viewport.Height = max(height-chromeRows-3, 1)
	m.filepicker.Height = max(height-chromeRows-4, 1)
	m.help.Width = width

	m.confirm.Resize(width, height)
	m.search.Resize(width, height)

	switch m.viewMode {
	case ViewPreview:
		m.renderPreview()
	case ViewDocs:
		m.renderDocsCard()
	}
}

// View renders the model
func (m Model) View() string {
	if m.confirm.IsActive() {
		return m.confirm.View()
	}
	if m.search.IsActive() {
		return m.search.View()
	}

	filename := m.session.Filename()
	if filename == "" {
		filename = session.DefaultFileName
	}
	header := CreateHeader("KubeJS Editor", filename, m.width)

	var body string
	switch m.viewMode {
	case ViewPreview, ViewDocs:
		top, bottom := CreateScrollIndicators(!m.viewport.AtTop(), !m.viewport.AtBottom())
		body = lipgloss.JoinVertical(lipgloss.Left,
			StyleCategory.Render(m.viewTitle),
			top,
			m.viewport.View(),
			bottom,
		)
	case ViewFilePicker:
		body = lipgloss.JoinVertical(lipgloss.Left,
			StyleCategory.Render(fmt.Sprintf("Load script (%s)", session.ScriptExt)),
			StyleTextDim.Render(Truncate(m.filepicker.CurrentDirectory, m.width)),
			m.filepicker.View(),
		)
	default:
		body = m.renderEditorView()
	}

	status := CreateStatus(m.status.Text, m.status.IsError, m.width)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, m.help.View(m.keys))
}

func (m Model) renderEditorView() string {
	sidebarStyle, editorStyle := StylePane, StylePane
	if m.focus == focusSidebar {
		sidebarStyle = StylePaneFocused
	} else {
		editorStyle = StylePaneFocused
	}

	sidebar := sidebarStyle.Render(m.sidebar.View())
	editor := m.editor.View()
	if m.completions.IsActive() {
		editor = lipgloss.JoinVertical(lipgloss.Left, editor, m.completions.View(m.cells.EditorCols))
	}
	editor = editorStyle.Render(editor)

	if m.cells.Stacked {
		return lipgloss.JoinVertical(lipgloss.Left, sidebar, editor)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, editor)
}
