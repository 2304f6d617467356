package service

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dpshade/kubejs-editor/internal/config"
	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/export"
	"github.com/dpshade/kubejs-editor/internal/importer"
	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/session"
)

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	svc, err := NewService(Options{Dir: dir, Clock: session.NewFakeClock(time.Unix(0, 0))})
	require.NoError(t, err)
	return svc
}

func TestNewServiceEmptyDir(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	assert.Len(t, svc.ListTemplates(), 31)
	assert.Equal(t, config.Default(), svc.Config())
	assert.Len(t, svc.Completions(), 17)
	assert.Empty(t, svc.Registry().Shadowed())
}

func TestNewServiceWithOverlay(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, dir)
	require.NoError(t, svc.InitLibrary())

	_, err := svc.SaveOverlay(&models.TemplateEntry{
		ID:       "smeltingRecipe",
		Name:     "Smelting (pack style)",
		Category: "Recipes",
		DocPath:  "recipes/smelting",
		Source:   "// our smelting\n",
	})
	require.NoError(t, err)
	_, err = svc.SaveOverlay(&models.TemplateEntry{
		ID:       "packOres",
		Name:     "Pack Ore Processing",
		Category: "Modpack",
		Source:   "// ores\n",
	})
	require.NoError(t, err)

	// Overlays are read at start-up only
	assert.Len(t, svc.ListTemplates(), 31)

	reloaded := newTestService(t, dir)
	assert.Len(t, reloaded.ListTemplates(), 32)

	smelting, err := reloaded.GetTemplate("smeltingRecipe")
	require.NoError(t, err)
	assert.Equal(t, "// our smelting\n", smelting.Source)
	require.Len(t, reloaded.Registry().Shadowed(), 1)

	cats := reloaded.Categories()
	assert.Equal(t, "Modpack", cats[len(cats)-1].Name)

	results := reloaded.SearchTemplates("ore")
	require.NotEmpty(t, results)
	assert.Equal(t, "Pack Ore Processing", results[len(results)-1].Name)
}

func TestNewServiceInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("theme: solarized\n"), 0644))

	_, err := NewService(Options{Dir: dir})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetAppError(err).Code)
}

func TestApplyConfig(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	cfg := svc.Config()
	cfg.Theme = "hc-black"
	require.NoError(t, svc.ApplyConfig(cfg))
	assert.Equal(t, "hc-black", svc.Config().Theme)

	cfg.TabSize = 0
	assert.Error(t, svc.ApplyConfig(cfg))
	assert.Equal(t, 2, svc.Config().TabSize)
}

func TestGetTemplateNotFound(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	_, err := svc.GetTemplate("nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetAppError(err).Code)
}

func TestResolveDocs(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	assert.Equal(t, "https://kubejs.com/wiki/recipes/smelting", svc.ResolveDocs("smeltingRecipe", "", ""))
	assert.Equal(t, "https://kubejs.com/wiki/registry", svc.ResolveDocs("", "", "StartupEvents.registry('item', e => {})"))
	assert.Equal(t, "", svc.TemplateDocsURL("createCompacting"))
}

func TestLanguage(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	bundle := svc.Language()
	assert.Equal(t, "kubejs", bundle.ID)
	assert.Equal(t, "invalid", gjson.GetBytes(bundle.Monarch, "defaultToken").String())
	assert.Equal(t, "//", bundle.Configuration.Comments.LineComment)
	assert.Equal(t, true, bundle.Options["automaticLayout"])
}

func TestExport(t *testing.T) {
	svc := newTestService(t, t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, svc.Export(&buf, export.FormatJSON))
	assert.Equal(t, "https://kubejs.com/wiki/startup-scripts", gjson.Get(buf.String(), "templates.0.docsUrl").String())
}

func TestControllerSharesCatalog(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	c := svc.Controller()

	s := c.NewSession("client")
	defer s.Close()
	entry, _ := svc.GetTemplate("client")
	assert.Equal(t, entry.Source, s.Text())
}

func TestImportScripts(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, dir)

	pack := t.TempDir()
	scripts := filepath.Join(pack, "kubejs", "server_scripts")
	require.NoError(t, os.MkdirAll(scripts, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "ores.js"), []byte("// Ore processing\nServerEvents.recipes(e => {})\n"), 0644))

	result, err := svc.ImportScripts(importer.ImportOptions{Path: pack, Category: "Modpack"})
	require.NoError(t, err)
	require.Len(t, result.Written, 1)

	reloaded := newTestService(t, dir)
	assert.Len(t, reloaded.ListTemplates(), 32)
	entry, err := reloaded.GetTemplate("serverScriptsOres")
	require.NoError(t, err)
	assert.Equal(t, "Ore processing", entry.Name)
	assert.Equal(t, "Modpack", entry.Category)
	assert.Equal(t, "https://kubejs.com/wiki/server-scripts", reloaded.TemplateDocsURL("serverScriptsOres"))

	// A second import finds the id taken
	result, err = reloaded.ImportScripts(importer.ImportOptions{Path: pack})
	require.NoError(t, err)
	assert.Equal(t, []string{"serverScriptsOres"}, result.Skipped)
}
