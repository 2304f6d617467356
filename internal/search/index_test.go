package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/kubejs-editor/internal/catalog"
	"github.com/dpshade/kubejs-editor/internal/models"
)

func TestSearchShortQueries(t *testing.T) {
	idx := Build(catalog.MustBuiltin())

	for _, q := range []string{"", " ", "s", "  r  "} {
		results := idx.Search(q)
		assert.NotNil(t, results)
		assert.Empty(t, results, "query %q", q)
	}
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	idx := Build(catalog.MustBuiltin())

	results := idx.Search("  SHAPE ")
	require.Len(t, results, 2)
	assert.Equal(t, models.SearchResult{Category: "Recipes", Name: "Shaped Crafting Recipe", TemplateID: "craftingShapedRecipe"}, results[0])
	assert.Equal(t, "craftingShapelessRecipe", results[1].TemplateID)
}

func TestSearchPreservesCategoryOrder(t *testing.T) {
	idx := Build(catalog.MustBuiltin())

	results := idx.Search("script")
	require.Len(t, results, 3)
	assert.Equal(t, []string{"startup", "server", "client"}, []string{
		results[0].TemplateID, results[1].TemplateID, results[2].TemplateID,
	})

	results = idx.Search("re")
	var cats []string
	for _, r := range results {
		if len(cats) == 0 || cats[len(cats)-1] != r.Category {
			cats = append(cats, r.Category)
		}
	}
	assert.Equal(t, []string{"Recipes", "Content", "ProbeJS", "Create", "Mekanism", "Advanced"}, cats)
	assert.Len(t, results, 21)
}

type fixedCategories []models.Category

func (f fixedCategories) Categories() []models.Category { return f }

func TestSearchMatchesDisplayNameOnly(t *testing.T) {
	idx := Build(fixedCategories{
		{Name: "Recipes", Items: []models.TemplateRef{{Name: "Smelting", TemplateID: "shapedIdButSmeltName"}}},
	})

	assert.Empty(t, idx.Search("shaped"))
	assert.Len(t, idx.Search("smelt"), 1)
}

func TestGroup(t *testing.T) {
	groups := Group([]models.SearchResult{
		{Category: "A", Name: "one", TemplateID: "1"},
		{Category: "A", Name: "two", TemplateID: "2"},
		{Category: "B", Name: "three", TemplateID: "3"},
	})

	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "B", groups[1].Name)
	assert.Nil(t, Group(nil))
}
