// Package search answers sidebar searches from the catalog's category
// projection.
package search

import (
	"strings"

	"github.com/dpshade/kubejs-editor/internal/models"
)

// MinQueryLength is the shortest trimmed query that produces results.
const MinQueryLength = 2

// Categories is the sidebar projection the index is built from.
type Categories interface {
	Categories() []models.Category
}

type item struct {
	name       string
	lower      string
	templateID string
}

type group struct {
	name  string
	items []item
}

// Index is a snapshot of the sidebar grouping.
type Index struct {
	groups []group
}

// Build snapshots the category projection of src.
func Build(src Categories) *Index {
	cats := src.Categories()
	idx := &Index{groups: make([]group, 0, len(cats))}
	for _, c := range cats {
		g := group{name: c.Name, items: make([]item, 0, len(c.Items))}
		for _, ref := range c.Items {
			g.items = append(g.items, item{
				name:       ref.Name,
				lower:      strings.ToLower(ref.Name),
				templateID: ref.TemplateID,
			})
		}
		idx.groups = append(idx.groups, g)
	}
	return idx
}

// Search returns items whose display name contains the trimmed query,
// ignoring case, in category order then item order.
func (idx *Index) Search(query string) []models.SearchResult {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return []models.SearchResult{}
	}

	needle := strings.ToLower(query)
	results := []models.SearchResult{}
	for _, g := range idx.groups {
		for _, it := range g.items {
			if strings.Contains(it.lower, needle) {
				results = append(results, models.SearchResult{
					Category:   g.name,
					Name:       it.name,
					TemplateID: it.templateID,
				})
			}
		}
	}
	return results
}

// Group splits results into runs sharing a category, preserving order.
func Group(results []models.SearchResult) []models.Category {
	var groups []models.Category
	for _, r := range results {
		if n := len(groups); n == 0 || groups[n-1].Name != r.Category {
			groups = append(groups, models.Category{Name: r.Category})
		}
		last := &groups[len(groups)-1]
		last.Items = append(last.Items, models.TemplateRef{Name: r.Name, TemplateID: r.TemplateID})
	}
	return groups
}
