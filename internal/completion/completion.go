// Package completion turns the catalog vocabulary into the flat suggestion
// list offered by the editing widget.
package completion

import (
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/dpshade/kubejs-editor/internal/models"
)

// EventTypeDetail is the detail text shown for vocabulary entries.
const EventTypeDetail = "KubeJS Event Type"

// Vocabulary is the catalog data the adapter reads.
type Vocabulary interface {
	Vocabulary() []models.VocabularyEntry
	Methods() []models.MethodEntry
	Properties() []models.PropertyEntry
}

// Adapter produces completion items from the catalog.
type Adapter struct {
	vocab Vocabulary
}

// NewAdapter creates an adapter over vocab.
func NewAdapter(vocab Vocabulary) *Adapter {
	return &Adapter{vocab: vocab}
}

// List returns every suggestion: vocabulary, then methods, then properties,
// each in declaration order. Filtering by prefix is left to the widget.
func (a *Adapter) List() []models.CompletionItem {
	vocab := a.vocab.Vocabulary()
	methods := a.vocab.Methods()
	props := a.vocab.Properties()

	items := make([]models.CompletionItem, 0, len(vocab)+len(methods)+len(props))
	for _, v := range vocab {
		items = append(items, models.CompletionItem{
			Label:      v.Name,
			InsertText: v.Name,
			Detail:     EventTypeDetail,
			Kind:       models.KindClass,
		})
	}
	for _, m := range methods {
		items = append(items, models.CompletionItem{
			Label:         m.Name,
			InsertText:    m.Completion,
			Detail:        m.Description,
			Documentation: m.Description,
			Kind:          models.KindMethod,
		})
	}
	for _, p := range props {
		items = append(items, models.CompletionItem{
			Label:         p.Name,
			InsertText:    p.Completion,
			Detail:        p.Description,
			Documentation: p.Description,
			Kind:          models.KindProperty,
		})
	}
	return items
}

// Narrow filters items by prefix with fuzzy matching, best matches first.
// An empty prefix keeps every item in adapter order.
func Narrow(items []models.CompletionItem, prefix string) []models.CompletionItem {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return items
	}

	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.FilterValue()
	}

	matches := fuzzy.Find(prefix, labels)
	result := make([]models.CompletionItem, 0, len(matches))
	for _, match := range matches {
		result = append(result, items[match.Index])
	}
	return result
}

// WordBefore returns the identifier, dots included, that ends at offset in text.
func WordBefore(text string, offset int) string {
	runes := []rune(text)
	if offset > len(runes) {
		offset = len(runes)
	}
	start := offset
	for start > 0 {
		r := runes[start-1]
		if r != '.' && r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		start--
	}
	return string(runes[start:offset])
}

// Monaco CompletionItemKind values.
const (
	monacoMethod   = 0
	monacoClass    = 5
	monacoProperty = 9
)

// MonacoKind maps a kind to the widget's numeric CompletionItemKind.
func MonacoKind(kind models.CompletionKind) int {
	switch kind {
	case models.KindMethod:
		return monacoMethod
	case models.KindProperty:
		return monacoProperty
	default:
		return monacoClass
	}
}
