package models

import (
	"strings"
)

// TemplateEntry is one named KubeJS script in the catalog.
type TemplateEntry struct {
	// Frontmatter fields
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"title" json:"title"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	DocPath  string `yaml:"docs,omitempty" json:"docs,omitempty"`

	// Content fields
	Source   string `yaml:"-" json:"source"`             // Literal script text
	FilePath string `yaml:"-" json:"filePath,omitempty"` // Overlay file, empty for built-ins
}

// IsAbsoluteDoc reports whether DocPath is a full URL rather than a wiki topic.
func (t TemplateEntry) IsAbsoluteDoc() bool {
	return strings.HasPrefix(t.DocPath, "http")
}

// Implement list.Item interface for bubbles list component

// FilterValue returns the value used for filtering in lists
func (t TemplateEntry) FilterValue() string {
	return cleanString(t.Name + " " + t.ID)
}

// Title satisfies the list.Item interface
func (t TemplateEntry) Title() string {
	if t.Name != "" {
		return cleanString(t.Name)
	}
	return cleanString(t.ID)
}

// Description satisfies the list.Item interface
func (t TemplateEntry) Description() string {
	var parts []string
	if t.Category != "" {
		parts = append(parts, t.Category)
	}
	parts = append(parts, t.ID)
	if t.FilePath != "" {
		parts = append(parts, "overlay")
	}
	return cleanString(strings.Join(parts, " • "))
}

// Category is a sidebar group in display order.
type Category struct {
	Name  string        `yaml:"name" json:"name"`
	Items []TemplateRef `yaml:"items" json:"items"`
}

// TemplateRef is one sidebar item pointing at a catalog entry.
type TemplateRef struct {
	Name       string `yaml:"name" json:"name"`
	TemplateID string `yaml:"template" json:"templateId"`
}

// cleanString removes problematic characters that might cause rendering issues
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Artifact is a script file produced by a save, ready to hand to a
// download or write to disk.
type Artifact struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime"`
	Content  string `json:"content"`
}
