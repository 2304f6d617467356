package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/kubejs-editor/internal/models"
)

// sidebarItem is either a category header or a template link
type sidebarItem struct {
	header     bool
	category   string
	name       string
	templateID string
}

func (i sidebarItem) FilterValue() string {
	return i.name
}

// sidebarDelegate draws one line per item. Headers are not selectable.
type sidebarDelegate struct {
	active string
}

func (d sidebarDelegate) Height() int                               { return 1 }
func (d sidebarDelegate) Spacing() int                              { return 0 }
func (d sidebarDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d sidebarDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(sidebarItem)
	if !ok {
		return
	}

	width := m.Width()
	if item.header {
		fmt.Fprint(w, StyleCategory.Render(Truncate(item.category, width)))
		return
	}

	marker := "  "
	if item.templateID == d.active {
		marker = "● "
	}
	title := Truncate(marker+item.name, width)

	switch {
	case index == m.Index():
		fmt.Fprint(w, StyleFocused.Render(padRight(title, width)))
	case item.templateID == d.active:
		fmt.Fprint(w, StyleActive.Render(title))
	default:
		fmt.Fprint(w, StyleUnselected.Render(title))
	}
}

// sidebarItems flattens the categories into headers followed by their items
func sidebarItems(categories []models.Category) []list.Item {
	var items []list.Item
	for _, c := range categories {
		items = append(items, sidebarItem{header: true, category: c.Name})
		for _, ref := range c.Items {
			items = append(items, sidebarItem{
				category:   c.Name,
				name:       ref.Name,
				templateID: ref.TemplateID,
			})
		}
	}
	return items
}

// newSidebar builds the template list with the cursor on the first template
func newSidebar(categories []models.Category) list.Model {
	l := list.New(sidebarItems(categories), sidebarDelegate{}, 24, 20)
	l.Title = "Templates"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	keyMap := list.DefaultKeyMap()
	keyMap.Quit = key.NewBinding(key.WithDisabled())
	keyMap.ForceQuit = key.NewBinding(key.WithDisabled())
	keyMap.ShowFullHelp = key.NewBinding(key.WithDisabled())
	keyMap.CloseFullHelp = key.NewBinding(key.WithDisabled())
	l.KeyMap = keyMap

	skipHeaders(&l, 1)
	return l
}

// skipHeaders moves the cursor off a header in direction dir (+1 or -1),
// turning around at either end of the list.
func skipHeaders(l *list.Model, dir int) {
	items := l.Items()
	if len(items) == 0 {
		return
	}
	for attempts := 0; attempts < 2; attempts++ {
		i := l.Index()
		for i >= 0 && i < len(items) {
			if it, ok := items[i].(sidebarItem); ok && !it.header {
				l.Select(i)
				return
			}
			i += dir
		}
		dir = -dir
	}
}

// selectedTemplate returns the template id under the cursor
func selectedTemplate(l list.Model) (string, bool) {
	item, ok := l.SelectedItem().(sidebarItem)
	if !ok || item.header {
		return "", false
	}
	return item.templateID, true
}
