package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/kubejs-editor/internal/models"
)

//go:embed catalog.yaml templates/*.js
var builtinFS embed.FS

// Manifest is the decoded form of a catalog source.
type Manifest struct {
	Categories []ManifestCategory       `yaml:"categories"`
	Vocabulary []models.VocabularyEntry `yaml:"vocabulary,omitempty"`
	Methods    []models.MethodEntry     `yaml:"methods,omitempty"`
	Properties []models.PropertyEntry   `yaml:"properties,omitempty"`
}

// ManifestCategory defines entries under a sidebar group. Links add sidebar
// items for entries defined elsewhere.
type ManifestCategory struct {
	Name      string                 `yaml:"name"`
	Templates []models.TemplateEntry `yaml:"templates"`
	Links     []models.TemplateRef   `yaml:"links,omitempty"`
}

// Source supplies catalog data. Sources are applied in order and a later
// definition of an id shadows an earlier one.
type Source interface {
	Name() string
	Load() (*Manifest, error)
}

type fsSource struct {
	name string
	fsys fs.FS
}

// Builtin returns the catalog embedded in the binary.
func Builtin() Source {
	return fsSource{name: "builtin", fsys: builtinFS}
}

// FromFS reads a catalog.yaml plus templates/<id>.js bodies from fsys.
func FromFS(name string, fsys fs.FS) Source {
	return fsSource{name: name, fsys: fsys}
}

func (s fsSource) Name() string { return s.name }

func (s fsSource) Load() (*Manifest, error) {
	data, err := fs.ReadFile(s.fsys, "catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	for ci := range m.Categories {
		cat := &m.Categories[ci]
		for ti := range cat.Templates {
			entry := &cat.Templates[ti]
			body, err := fs.ReadFile(s.fsys, path.Join("templates", entry.ID+".js"))
			if err != nil {
				return nil, fmt.Errorf("template %s: %w", entry.ID, err)
			}
			entry.Source = string(body)
		}
	}

	return &m, nil
}

type manifestSource struct {
	name     string
	manifest Manifest
}

// FromManifest wraps an already decoded manifest.
func FromManifest(name string, m Manifest) Source {
	return manifestSource{name: name, manifest: m}
}

func (s manifestSource) Name() string { return s.name }

func (s manifestSource) Load() (*Manifest, error) {
	m := s.manifest
	return &m, nil
}

// FromEntries groups loose entries, such as user overlay files, by their
// Category field. Entries without a category land in "Custom".
func FromEntries(name string, entries []models.TemplateEntry) Source {
	var m Manifest
	index := make(map[string]int)
	for _, entry := range entries {
		category := entry.Category
		if category == "" {
			category = "Custom"
		}
		i, ok := index[category]
		if !ok {
			i = len(m.Categories)
			index[category] = i
			m.Categories = append(m.Categories, ManifestCategory{Name: category})
		}
		m.Categories[i].Templates = append(m.Categories[i].Templates, entry)
	}
	return FromManifest(name, m)
}
