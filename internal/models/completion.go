package models

// VocabularyEntry is a top-level KubeJS event group name such as ServerEvents.
type VocabularyEntry struct {
	Name string `yaml:"name" json:"name"`
}

// MethodEntry is a known event handler call with its snippet.
type MethodEntry struct {
	Name        string `yaml:"name" json:"name"`
	Completion  string `yaml:"completion" json:"completion"`
	Description string `yaml:"description" json:"description"`
}

// PropertyEntry is a known member of the event object passed to handlers.
type PropertyEntry struct {
	Name        string `yaml:"name" json:"name"`
	Completion  string `yaml:"completion" json:"completion"`
	Description string `yaml:"description" json:"description"`
}

// CompletionKind classifies a completion item.
type CompletionKind string

const (
	KindClass    CompletionKind = "class"
	KindMethod   CompletionKind = "method"
	KindProperty CompletionKind = "property"
)

// CompletionItem is one suggestion offered by the editing widget.
type CompletionItem struct {
	Label         string         `json:"label"`
	InsertText    string         `json:"insertText"`
	Detail        string         `json:"detail"`
	Documentation string         `json:"documentation,omitempty"`
	Kind          CompletionKind `json:"kind"`
}

// FilterValue lets completion items be narrowed with fuzzy matching
func (c CompletionItem) FilterValue() string {
	return c.Label
}
