package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/kubejs-editor/internal/catalog"
	"github.com/dpshade/kubejs-editor/internal/completion"
	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
)

func builtinDocument(t *testing.T) Document {
	t.Helper()
	reg := catalog.MustBuiltin()
	docs := func(id string) string { return "https://kubejs.com/wiki/" + id }
	return Build(reg.All(), docs, completion.NewAdapter(reg).List())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YAML": FormatYAML, ".yml": FormatYAML, "xlsx": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("csv")
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
}

func TestBuild(t *testing.T) {
	doc := builtinDocument(t)

	require.Len(t, doc.Templates, 31)
	assert.Equal(t, "startup", doc.Templates[0].ID)
	assert.Equal(t, "Basic Scripts", doc.Templates[0].Category)
	assert.Equal(t, "https://kubejs.com/wiki/startup", doc.Templates[0].DocsURL)

	require.Len(t, doc.Completions, 17)
	assert.Equal(t, "class", doc.Completions[0].Kind)
	assert.Equal(t, "property", doc.Completions[16].Kind)

	bare := Build(catalog.MustBuiltin().All(), nil, nil)
	assert.Empty(t, bare.Templates[0].DocsURL)
	assert.NotNil(t, bare.Completions)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, builtinDocument(t)))

	out := buf.String()
	assert.Equal(t, int64(31), gjson.Get(out, "templates.#").Int())
	assert.Equal(t, "craftingShapedRecipe", gjson.Get(out, "templates.3.id").String())
	assert.Equal(t, "event.smelting(output, input)", gjson.Get(out, `completions.#(label=="event.smelting").insertText`).String())
	// Arrow functions must survive unescaped
	assert.Contains(t, out, "=>")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	doc := builtinDocument(t)
	require.NoError(t, Write(&buf, FormatYAML, doc))

	var back Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, doc.Templates[5].Source, back.Templates[5].Source)
	assert.Len(t, back.Completions, 17)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	doc := builtinDocument(t)
	require.NoError(t, Write(&buf, FormatXLSX, doc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TemplatesSheet, CompletionsSheet}, f.GetSheetList())

	rows, err := f.GetRows(TemplatesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 32)
	assert.Equal(t, []string{"id", "title", "category", "docs_url", "source"}, rows[0])
	assert.Equal(t, "startup", rows[1][0])
	assert.Equal(t, doc.Templates[0].Source, rows[1][4])

	rows, err = f.GetRows(CompletionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 18)
	assert.Equal(t, "ServerEvents", rows[1][1])
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("toml"), Document{}))
}
