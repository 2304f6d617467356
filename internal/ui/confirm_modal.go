package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModal asks a yes/no question before a template replaces the buffer
type ConfirmModal struct {
	prompt   string
	isActive bool
	answered bool
	accepted bool
	width    int
	height   int
}

// NewConfirmModal creates an inactive modal
func NewConfirmModal() *ConfirmModal {
	return &ConfirmModal{}
}

// Show opens the modal with prompt
func (m *ConfirmModal) Show(prompt string) {
	m.prompt = prompt
	m.isActive = true
	m.answered = false
	m.accepted = false
}

// Update records a y/n answer and closes the modal
func (m *ConfirmModal) Update(msg tea.Msg) tea.Cmd {
	if !m.isActive {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Yes):
			m.answer(true)
		case key.Matches(msg, keys.No):
			m.answer(false)
		}
	}
	return nil
}

func (m *ConfirmModal) answer(accept bool) {
	m.isActive = false
	m.answered = true
	m.accepted = accept
}

// Answer returns the user's choice once, after the modal closes
func (m *ConfirmModal) Answer() (accepted, ok bool) {
	if !m.answered {
		return false, false
	}
	m.answered = false
	return m.accepted, true
}

// IsActive reports whether the modal is waiting for an answer
func (m *ConfirmModal) IsActive() bool {
	return m.isActive
}

// Resize updates the area the modal is centred in
func (m *ConfirmModal) Resize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the modal
func (m *ConfirmModal) View() string {
	if !m.isActive {
		return ""
	}

	width := min(60, max(m.width-8, 20))
	question := lipgloss.NewStyle().Width(width).Render(StyleText.Render(m.prompt))
	answers := lipgloss.JoinHorizontal(lipgloss.Left,
		StyleSuccess.Render("[y] Replace"),
		"  ",
		StyleTextMuted.Render("[n] Keep editing"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		StyleTitle.Render("Replace buffer?"),
		"",
		question,
		"",
		answers,
	)
	return CenterModal(StyleModal.Render(content), m.width, m.height)
}
