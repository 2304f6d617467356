package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/search"
)

// SearchModal is the template search box with its result list
type SearchModal struct {
	input      textinput.Model
	results    []models.SearchResult
	cursor     int
	isActive   bool
	chosen     string
	searchFunc func(string) []models.SearchResult
	width      int
	height     int
}

// NewSearchModal creates a search box backed by searchFunc
func NewSearchModal(searchFunc func(string) []models.SearchResult) *SearchModal {
	ti := textinput.New()
	ti.Placeholder = "Search templates"
	ti.Prompt = "🔍 "
	ti.CharLimit = 100
	ti.Width = 40

	return &SearchModal{
		input:      ti,
		searchFunc: searchFunc,
	}
}

// SetActive opens or closes the search. Opening clears the previous query.
func (m *SearchModal) SetActive(active bool) {
	m.isActive = active
	if active {
		m.input.SetValue("")
		m.input.Focus()
		m.results = nil
		m.cursor = 0
		m.chosen = ""
		return
	}
	m.input.Blur()
}

// IsActive reports whether the search box has focus
func (m *SearchModal) IsActive() bool {
	return m.isActive
}

// Chosen returns the template picked with enter, once
func (m *SearchModal) Chosen() (string, bool) {
	if m.chosen == "" {
		return "", false
	}
	id := m.chosen
	m.chosen = ""
	return id, true
}

// Update handles typing and result navigation
func (m *SearchModal) Update(msg tea.Msg) tea.Cmd {
	if !m.isActive {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Back):
			m.SetActive(false)
			return nil
		case msg.Type == tea.KeyEnter:
			if m.cursor < len(m.results) {
				m.chosen = m.results[m.cursor].TemplateID
				m.SetActive(false)
			}
			return nil
		case msg.Type == tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return nil
		case msg.Type == tea.KeyDown:
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.results = m.searchFunc(m.input.Value())
		m.cursor = 0
	}
	return cmd
}

// Resize updates the modal size
func (m *SearchModal) Resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = min(50, max(width-16, 10))
}

// View renders the query and its results grouped under category headers
func (m *SearchModal) View() string {
	if !m.isActive {
		return ""
	}

	var content []string
	content = append(content, StyleTitle.Render("Search Templates"), "")
	content = append(content, StyleSearchInput.Render(m.input.View()), "")

	query := strings.TrimSpace(m.input.Value())
	switch {
	case len([]rune(query)) < search.MinQueryLength:
		content = append(content, StyleTextDim.Render(fmt.Sprintf("Type at least %d characters", search.MinQueryLength)))
	case len(m.results) == 0:
		content = append(content, StyleTextDim.Render("No templates found"))
	default:
		maxRows := max(m.height-14, 5)
		i := 0
	groups:
		for _, g := range search.Group(m.results) {
			content = append(content, StyleCategory.Render(g.Name))
			for _, ref := range g.Items {
				if len(content) >= maxRows {
					content = append(content, StyleTextDim.Render(fmt.Sprintf("… %d more", len(m.results)-i)))
					break groups
				}
				if i == m.cursor {
					content = append(content, StyleFocused.Render("▶ "+ref.Name))
				} else {
					content = append(content, StyleUnselected.Render("  "+ref.Name))
				}
				i++
			}
		}
	}

	content = append(content, "", StyleTextDim.Render("↑/↓: navigate • Enter: load • Esc: close"))
	return CenterModal(StyleModal.Render(lipgloss.JoinVertical(lipgloss.Left, content...)), m.width, m.height)
}
