package renderer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dpshade/kubejs-editor/internal/models"
)

// Renderer turns a catalog entry into the documentation card shown by the
// TUI and by `show`.
type Renderer struct {
	entry   *models.TemplateEntry
	docsURL string
}

// NewRenderer creates a new renderer instance
func NewRenderer(entry *models.TemplateEntry, docsURL string) *Renderer {
	return &Renderer{
		entry:   entry,
		docsURL: docsURL,
	}
}

// RenderText returns the template body unchanged
func (r *Renderer) RenderText() string {
	return r.entry.Source
}

// RenderMarkdown builds the card: title, category, docs link and the fenced
// source.
func (r *Renderer) RenderMarkdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.entry.Name)

	var meta []string
	if r.entry.Category != "" {
		meta = append(meta, fmt.Sprintf("**Category:** %s", r.entry.Category))
	}
	meta = append(meta, fmt.Sprintf("**ID:** `%s`", r.entry.ID))
	b.WriteString(strings.Join(meta, " · "))
	b.WriteString("\n\n")

	if r.docsURL != "" {
		fmt.Fprintf(&b, "**Documentation:** <%s>\n\n", r.docsURL)
	}

	// Bodies with ``` inside would end a three-tick fence early
	fence := "```"
	for strings.Contains(r.entry.Source, fence) {
		fence += "`"
	}
	fmt.Fprintf(&b, "%sjs\n%s", fence, r.entry.Source)
	if !strings.HasSuffix(r.entry.Source, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(fence)
	b.WriteString("\n")

	return b.String()
}

// Card is the JSON shape of a rendered entry
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	DocsURL  string `json:"docsUrl,omitempty"`
	Source   string `json:"source"`
}

// RenderJSON renders the entry and its resolved docs URL as indented JSON
func (r *Renderer) RenderJSON() (string, error) {
	card := Card{
		ID:       r.entry.ID,
		Title:    r.entry.Name,
		Category: r.entry.Category,
		DocsURL:  r.docsURL,
		Source:   r.entry.Source,
	}

	jsonBytes, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	return string(jsonBytes), nil
}

// RenderCompletionDocs lists method and property completions as a markdown
// table. Vocabulary entries carry no documentation and are listed by name.
func RenderCompletionDocs(items []models.CompletionItem) string {
	var b strings.Builder
	var vocab []string

	b.WriteString("# KubeJS completions\n\n")
	b.WriteString("| Kind | Name | Inserts | Description |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, item := range items {
		if item.Kind == models.KindClass {
			vocab = append(vocab, "`"+item.Label+"`")
			continue
		}
		fmt.Fprintf(&b, "| %s | `%s` | `%s` | %s |\n",
			item.Kind, escapeCell(item.Label), escapeCell(item.InsertText), escapeCell(item.Documentation))
	}

	if len(vocab) > 0 {
		b.WriteString("\n**Event types:** ")
		b.WriteString(strings.Join(vocab, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// NewTermRenderer creates a glamour renderer with improved contrast handling
func NewTermRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()
	return NewTermRendererWithProfile(wordWrap, profile, lipgloss.HasDarkBackground())
}

// NewTermRendererWithProfile picks a style for an explicit colour profile.
// Ascii output uses the notty style so rendering is stable in pipes.
func NewTermRendererWithProfile(wordWrap int, profile termenv.Profile, darkBg bool) (*glamour.TermRenderer, error) {
	var styleOption glamour.TermRendererOption
	switch profile {
	case termenv.TrueColor, termenv.ANSI256:
		if darkBg {
			styleOption = glamour.WithStandardStyle("dark")
		} else {
			styleOption = glamour.WithStandardStyle("light")
		}
	case termenv.Ascii:
		styleOption = glamour.WithStandardStyle("notty")
	default:
		styleOption = glamour.WithAutoStyle()
	}

	return glamour.NewTermRenderer(
		styleOption,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// Render formats markdown for the terminal, falling back to the raw text if
// glamour fails.
func Render(tr *glamour.TermRenderer, markdown string) string {
	if tr == nil {
		return markdown
	}
	out, err := tr.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
