// Package catalog holds the template registry: the fixed set of KubeJS
// templates, their sidebar grouping, documentation topics and completion
// vocabulary.
//
// The registry is built once at startup from an ordered list of sources
// (the embedded catalog first, then user overlays). After construction it is
// read-only and safe for concurrent use.
package catalog

import (
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/models"
)

// ShadowKind names the table in which a duplicate definition was found.
type ShadowKind string

const (
	ShadowTemplate   ShadowKind = "template"
	ShadowVocabulary ShadowKind = "vocabulary"
	ShadowMethod     ShadowKind = "method"
	ShadowProperty   ShadowKind = "property"
)

// Shadow records a key defined more than once. The later source wins.
type Shadow struct {
	Kind     ShadowKind `json:"kind"`
	Key      string     `json:"key"`
	Previous string     `json:"previous"`
	By       string     `json:"by"`
}

// Registry is the read-only template catalog.
type Registry struct {
	// entries keeps catalog order for iteration
	entries []models.TemplateEntry
	// byID provides fast lookup into entries
	byID map[string]int
	// origin remembers which source defined each key
	origin map[string]string

	categories []models.Category
	vocabulary []models.VocabularyEntry
	methods    []models.MethodEntry
	properties []models.PropertyEntry

	shadowed []Shadow
}

// New builds a registry from sources applied in order.
func New(sources ...Source) (*Registry, error) {
	r := &Registry{
		byID:   make(map[string]int),
		origin: make(map[string]string),
	}

	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidFormat, "Failed to load catalog source").
				WithContext("source", src.Name())
		}
		if err := r.apply(src.Name(), m); err != nil {
			return nil, err
		}
		slog.Debug("Loaded catalog source",
			"source", src.Name(),
			"categories", len(m.Categories),
		)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}

	if len(r.shadowed) > 0 {
		slog.Info("Catalog definitions shadowed",
			"count", len(r.shadowed),
		)
	}

	return r, nil
}

// MustBuiltin returns the registry for the embedded catalog and panics if it
// is malformed.
func MustBuiltin() *Registry {
	r, err := New(Builtin())
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) apply(source string, m *Manifest) error {
	for _, mc := range m.Categories {
		catIdx := r.category(mc.Name)

		for _, entry := range mc.Templates {
			entry.ID = strings.TrimSpace(entry.ID)
			if entry.ID == "" {
				return apperrors.ValidationError("Template without id").
					WithContext("source", source).
					WithContext("category", mc.Name)
			}
			if entry.Name == "" {
				entry.Name = entry.ID
			}

			if i, exists := r.byID[entry.ID]; exists {
				r.shadow(ShadowTemplate, entry.ID, source)
				// The shadowing entry takes over the existing sidebar slot.
				entry.Category = r.entries[i].Category
				r.entries[i] = entry
				r.renameRefs(entry.ID, entry.Name)
				continue
			}

			entry.Category = mc.Name
			r.byID[entry.ID] = len(r.entries)
			r.origin[key(ShadowTemplate, entry.ID)] = source
			r.entries = append(r.entries, entry)
			r.categories[catIdx].Items = append(r.categories[catIdx].Items, models.TemplateRef{
				Name:       entry.Name,
				TemplateID: entry.ID,
			})
		}

		for _, link := range mc.Links {
			r.categories[catIdx].Items = append(r.categories[catIdx].Items, link)
		}
	}

	for _, v := range m.Vocabulary {
		if r.seen(ShadowVocabulary, v.Name, source) {
			continue
		}
		r.vocabulary = append(r.vocabulary, v)
	}

	for _, method := range m.Methods {
		if r.seen(ShadowMethod, method.Name, source) {
			for i := range r.methods {
				if r.methods[i].Name == method.Name {
					r.methods[i] = method
				}
			}
			continue
		}
		r.methods = append(r.methods, method)
	}

	for _, prop := range m.Properties {
		if r.seen(ShadowProperty, prop.Name, source) {
			for i := range r.properties {
				if r.properties[i].Name == prop.Name {
					r.properties[i] = prop
				}
			}
			continue
		}
		r.properties = append(r.properties, prop)
	}

	return nil
}

// category returns the index of the named category, creating it if needed.
func (r *Registry) category(name string) int {
	for i := range r.categories {
		if r.categories[i].Name == name {
			return i
		}
	}
	r.categories = append(r.categories, models.Category{Name: name})
	return len(r.categories) - 1
}

func (r *Registry) renameRefs(id, name string) {
	for ci := range r.categories {
		for ii := range r.categories[ci].Items {
			if r.categories[ci].Items[ii].TemplateID == id {
				r.categories[ci].Items[ii].Name = name
			}
		}
	}
}

// seen reports whether key was already defined, recording a shadow if so.
func (r *Registry) seen(kind ShadowKind, name, source string) bool {
	if _, exists := r.origin[key(kind, name)]; exists {
		r.shadow(kind, name, source)
		return true
	}
	r.origin[key(kind, name)] = source
	return false
}

func (r *Registry) shadow(kind ShadowKind, name, source string) {
	previous := r.origin[key(kind, name)]
	slog.Warn("Catalog definition shadowed",
		"kind", kind,
		"key", name,
		"previous_source", previous,
		"new_source", source,
	)
	r.shadowed = append(r.shadowed, Shadow{
		Kind:     kind,
		Key:      name,
		Previous: previous,
		By:       source,
	})
	r.origin[key(kind, name)] = source
}

func key(kind ShadowKind, name string) string {
	return string(kind) + ":" + name
}

// validate checks that every sidebar item names an existing entry.
func (r *Registry) validate() error {
	for ci := range r.categories {
		cat := &r.categories[ci]
		for ii := range cat.Items {
			ref := &cat.Items[ii]
			entry, ok := r.Get(ref.TemplateID)
			if !ok {
				return apperrors.ValidationError(fmt.Sprintf("Sidebar item %q references unknown template %q", ref.Name, ref.TemplateID)).
					WithContext("category", cat.Name)
			}
			if ref.Name == "" {
				ref.Name = entry.Name
			}
		}
	}
	return nil
}

// Get looks up a template by id. Absence is the only failure signal.
func (r *Registry) Get(id string) (*models.TemplateEntry, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	entry := r.entries[i]
	return &entry, true
}

// Has reports whether id names a template.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns every template in catalog order.
func (r *Registry) All() []models.TemplateEntry {
	result := make([]models.TemplateEntry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Categories returns the sidebar projection in display order.
func (r *Registry) Categories() []models.Category {
	result := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if len(c.Items) == 0 {
			continue
		}
		items := make([]models.TemplateRef, len(c.Items))
		copy(items, c.Items)
		result = append(result, models.Category{Name: c.Name, Items: items})
	}
	return result
}

// Vocabulary returns the top-level event group names.
func (r *Registry) Vocabulary() []models.VocabularyEntry {
	return append([]models.VocabularyEntry(nil), r.vocabulary...)
}

// Methods returns known event handler calls.
func (r *Registry) Methods() []models.MethodEntry {
	return append([]models.MethodEntry(nil), r.methods...)
}

// Properties returns known event object members.
func (r *Registry) Properties() []models.PropertyEntry {
	return append([]models.PropertyEntry(nil), r.properties...)
}

// Shadowed returns every duplicate definition seen during construction.
func (r *Registry) Shadowed() []Shadow {
	return append([]Shadow(nil), r.shadowed...)
}
