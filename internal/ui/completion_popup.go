package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/kubejs-editor/internal/models"
)

const popupRows = 8

// CompletionPopup offers completion items for the word before the cursor
type CompletionPopup struct {
	items    []models.CompletionItem
	prefix   string
	cursor   int
	isActive bool
	chosen   *models.CompletionItem
}

// Show opens the popup over items narrowed for prefix
func (p *CompletionPopup) Show(prefix string, items []models.CompletionItem) {
	p.prefix = prefix
	p.items = items
	p.cursor = 0
	p.chosen = nil
	p.isActive = len(items) > 0
}

// IsActive reports whether the popup is open
func (p *CompletionPopup) IsActive() bool {
	return p.isActive
}

// Chosen returns the accepted item and the prefix it replaces, once
func (p *CompletionPopup) Chosen() (models.CompletionItem, string, bool) {
	if p.chosen == nil {
		return models.CompletionItem{}, "", false
	}
	item := *p.chosen
	p.chosen = nil
	return item, p.prefix, true
}

// Update moves through the items; enter or tab accepts, esc closes
func (p *CompletionPopup) Update(msg tea.Msg) tea.Cmd {
	if !p.isActive {
		return nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, keys.Back):
		p.isActive = false
	case keyMsg.Type == tea.KeyEnter || keyMsg.Type == tea.KeyTab:
		item := p.items[p.cursor]
		p.chosen = &item
		p.isActive = false
	case keyMsg.Type == tea.KeyUp || keyMsg.Type == tea.KeyCtrlP:
		if p.cursor > 0 {
			p.cursor--
		}
	case keyMsg.Type == tea.KeyDown || keyMsg.Type == tea.KeyCtrlN:
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	}
	return nil
}

// View renders a window of items around the cursor
func (p *CompletionPopup) View(width int) string {
	if !p.isActive {
		return ""
	}

	start := 0
	if p.cursor >= popupRows {
		start = p.cursor - popupRows + 1
	}
	end := min(start+popupRows, len(p.items))

	width = max(min(width, 60), 20)
	var lines []string
	for i := start; i < end; i++ {
		item := p.items[i]
		line := fmt.Sprintf("%s %s", kindGlyph(item.Kind), item.Label)
		if item.Detail != "" {
			line += StyleTextDim.Render("  " + item.Detail)
		}
		line = Truncate(line, width-4)
		if i == p.cursor {
			line = StyleFocused.Render(padRight(line, width-4))
		}
		lines = append(lines, line)
	}
	if len(p.items) > popupRows {
		lines = append(lines, StyleTextDim.Render(fmt.Sprintf("%d/%d", p.cursor+1, len(p.items))))
	}
	return StylePopup.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func kindGlyph(kind models.CompletionKind) string {
	switch kind {
	case models.KindClass:
		return "C"
	case models.KindMethod:
		return "ƒ"
	case models.KindProperty:
		return "•"
	default:
		return " "
	}
}
