package session

import (
	"strings"

	"github.com/dpshade/kubejs-editor/internal/models"
)

// DocsBaseURL is the KubeJS wiki root.
const DocsBaseURL = "https://kubejs.com/wiki/"

// Addon documentation hosted outside the wiki.
const (
	ProbeJSURL  = "https://github.com/Prunoideae/ProbeJS"
	CreateURL   = "https://github.com/AlmostReliable/kubejs-creates"
	MekanismURL = "https://github.com/KubeJS-Mods/KubeJS-Mekanism"
)

// TemplateLookup finds catalog entries by id.
type TemplateLookup interface {
	Get(id string) (*models.TemplateEntry, bool)
}

type heuristic struct {
	needles []string
	url     string
}

// heuristics are checked in order against the buffer text.
var heuristics = []heuristic{
	{needles: []string{"ServerEvents.recipes"}, url: DocsBaseURL + "recipes"},
	{needles: []string{"StartupEvents.registry"}, url: DocsBaseURL + "registry"},
	{needles: []string{"ClientEvents"}, url: DocsBaseURL + "client-scripts"},
	{needles: []string{"ProbeJS", "Recipe.getRecipes()"}, url: ProbeJSURL},
	{needles: []string{"createMechanicalCrafting", "createMixing"}, url: CreateURL},
	{needles: []string{"mekanism", "mekanismEnriching"}, url: MekanismURL},
}

// DocsResolver maps templates and script text to documentation URLs.
type DocsResolver struct {
	lookup TemplateLookup
}

// NewDocsResolver creates a resolver reading topics from lookup.
func NewDocsResolver(lookup TemplateLookup) *DocsResolver {
	return &DocsResolver{lookup: lookup}
}

// TemplateURL returns the documentation URL mapped for id, if any.
func (d *DocsResolver) TemplateURL(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	entry, ok := d.lookup.Get(id)
	if !ok || entry.DocPath == "" {
		return "", false
	}
	if entry.IsAbsoluteDoc() {
		return entry.DocPath, true
	}
	return DocsBaseURL + entry.DocPath, true
}

// Resolve picks a URL from the active template, then the auxiliary
// selection, then known API calls in content, then the wiki root.
func (d *DocsResolver) Resolve(activeID, auxSelection, content string) string {
	if url, ok := d.TemplateURL(activeID); ok {
		return url
	}
	if url, ok := d.TemplateURL(auxSelection); ok {
		return url
	}
	for _, h := range heuristics {
		for _, needle := range h.needles {
			if strings.Contains(content, needle) {
				return h.url
			}
		}
	}
	return DocsBaseURL
}
