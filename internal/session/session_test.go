package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/kubejs-editor/internal/catalog"
	"github.com/dpshade/kubejs-editor/internal/models"
)

func newTestController(t *testing.T) (*Controller, *FakeClock, *catalog.Registry) {
	t.Helper()
	reg := catalog.MustBuiltin()
	clock := NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewController(reg, clock), clock, reg
}

func TestNewSessionPlaceholder(t *testing.T) {
	c, _, _ := newTestController(t)

	s := c.NewSession("")
	assert.Equal(t, Placeholder, s.Text())
	assert.Equal(t, models.Ready(), s.Status().Current())
	assert.NotEmpty(t, s.ID)
	assert.False(t, c.NeedsConfirmation(s))
}

func TestNewSessionDefaultTemplate(t *testing.T) {
	c, _, reg := newTestController(t)

	s := c.NewSession("server")
	entry, _ := reg.Get("server")
	assert.Equal(t, entry.Source, s.Text())
	assert.Equal(t, "Loaded server template", s.Status().Current().Text)

	unknown := c.NewSession("nope")
	assert.Equal(t, Placeholder, unknown.Text())
	assert.Equal(t, models.Ready(), unknown.Status().Current())
}

func TestLoadTemplateEveryEntry(t *testing.T) {
	c, _, reg := newTestController(t)
	s := c.NewSession("")

	for _, entry := range reg.All() {
		require.True(t, c.LoadTemplate(s, entry.ID))
		assert.Equal(t, entry.Source, s.Text(), entry.ID)
		assert.Contains(t, s.Status().Current().Text, entry.ID)
	}
}

func TestLoadTemplateUnknownIsNoop(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")
	c.Edit(s, "my code")

	assert.False(t, c.LoadTemplate(s, "missing"))
	assert.Equal(t, "my code", s.Text())
	assert.Equal(t, models.Ready(), s.Status().Current())
}

func TestSelectTemplateConfirmationGate(t *testing.T) {
	c, _, reg := newTestController(t)
	s := c.NewSession("")

	// Placeholder buffer: loads straight away
	assert.False(t, c.SelectTemplate(s, "craftingShapedRecipe"))
	shaped, _ := reg.Get("craftingShapedRecipe")
	assert.Equal(t, shaped.Source, s.Text())
	assert.Equal(t, "craftingShapedRecipe", s.ActiveTemplate())

	// Loaded content now needs confirmation
	assert.True(t, c.SelectTemplate(s, "smeltingRecipe"))
	assert.Equal(t, shaped.Source, s.Text())
	pending, ok := s.Pending()
	assert.True(t, ok)
	assert.Equal(t, "smeltingRecipe", pending)
	assert.Equal(t, "smeltingRecipe", s.ActiveTemplate())

	c.CancelSelection(s)
	assert.Equal(t, shaped.Source, s.Text())
	assert.Empty(t, s.ActiveTemplate())
	_, ok = s.Pending()
	assert.False(t, ok)
	assert.Equal(t, "Loaded craftingShapedRecipe template", s.Status().Current().Text, "cancel shows nothing new")

	assert.True(t, c.SelectTemplate(s, "smeltingRecipe"))
	assert.True(t, c.ConfirmSelection(s))
	smelting, _ := reg.Get("smeltingRecipe")
	assert.Equal(t, smelting.Source, s.Text())
	assert.Equal(t, "Loaded smeltingRecipe template", s.Status().Current().Text)
}

func TestSelectTemplateBlankBuffer(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")
	c.Edit(s, "   \n\t")

	assert.False(t, c.SelectTemplate(s, "client"))
	assert.Equal(t, "client", s.ActiveTemplate())
}

func TestSelectTemplatePlaceholderWithWhitespace(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")
	c.Edit(s, "\n"+Placeholder+"\n\n")

	assert.False(t, c.NeedsConfirmation(s))
}

func TestConfirmWithoutPending(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")

	assert.False(t, c.ConfirmSelection(s))
	c.CancelSelection(s)
	assert.Equal(t, Placeholder, s.Text())
}

func TestLoadTemplateWithConfirmation(t *testing.T) {
	c, _, reg := newTestController(t)
	s := c.NewSession("")

	var prompts []string
	decline := func(prompt string) bool {
		prompts = append(prompts, prompt)
		return false
	}
	accept := func(prompt string) bool {
		prompts = append(prompts, prompt)
		return true
	}

	assert.True(t, c.LoadTemplateWithConfirmation(s, "startup", decline))
	assert.Empty(t, prompts, "placeholder buffer does not prompt")

	c.Edit(s, "// my edits")
	assert.False(t, c.LoadTemplateWithConfirmation(s, "server", decline))
	assert.Equal(t, []string{ConfirmPrompt}, prompts)
	assert.Equal(t, "// my edits", s.Text())
	assert.Empty(t, s.ActiveTemplate())

	assert.True(t, c.LoadTemplateWithConfirmation(s, "server", accept))
	server, _ := reg.Get("server")
	assert.Equal(t, server.Source, s.Text())
	assert.Len(t, prompts, 2)

	assert.False(t, c.LoadTemplateWithConfirmation(s, "unknown", accept))
	assert.Len(t, prompts, 2)
}

func TestSaveFile(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")
	c.Edit(s, "// body")

	artifact := c.SaveFile(s)
	assert.Equal(t, models.Artifact{Name: DefaultFileName, MIMEType: "text/javascript", Content: "// body"}, artifact)
	assert.Equal(t, "Saved as kubejs-script.js", s.Status().Current().Text)

	require.NoError(t, c.LoadFile(context.Background(), s, "recipes.js", strings.NewReader("// loaded")))
	artifact = c.SaveFile(s)
	assert.Equal(t, "recipes.js", artifact.Name)
	assert.Equal(t, "// loaded", artifact.Content)
	assert.Equal(t, "Saved as recipes.js", s.Status().Current().Text)
}

func TestLoadFile(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")

	require.NoError(t, c.LoadFile(context.Background(), s, "anything.js", strings.NewReader("not even javascript {{{")))
	assert.Equal(t, "not even javascript {{{", s.Text())
	assert.Equal(t, "anything.js", s.Filename())
	assert.Equal(t, models.StatusMessage{Text: "Loaded anything.js"}, s.Status().Current())
}

func TestLoadFileNoSelection(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")

	require.NoError(t, c.LoadFile(context.Background(), s, "", nil))
	assert.Equal(t, Placeholder, s.Text())
	assert.Equal(t, models.Ready(), s.Status().Current())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLoadFileReadFailure(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")
	c.Edit(s, "keep me")

	err := c.LoadFile(context.Background(), s, "bad.js", failingReader{})
	require.Error(t, err)
	assert.Equal(t, "keep me", s.Text())
	assert.Empty(t, s.Filename())

	status := s.Status().Current()
	assert.True(t, status.IsError)
	assert.Equal(t, "Failed to load bad.js: disk on fire", status.Text)
}

func TestLoadFileCancelled(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.LoadFile(ctx, s, "slow.js", pr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Placeholder, s.Text())
	assert.True(t, s.Status().Current().IsError)
}

func TestLoadFileLastCompletionWins(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")

	firstR, firstW := io.Pipe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.LoadFile(context.Background(), s, "first.js", firstR)
	}()

	require.NoError(t, c.LoadFile(context.Background(), s, "second.js", strings.NewReader("second")))
	assert.Equal(t, "second", s.Text())

	firstW.Write([]byte("first"))
	firstW.Close()
	wg.Wait()

	assert.Equal(t, "first", s.Text())
	assert.Equal(t, "first.js", s.Filename())
}

func TestResolveDocumentationURL(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")

	assert.Equal(t, DocsBaseURL, c.ResolveDocumentationURL(s))

	c.SelectTemplate(s, "smeltingRecipe")
	assert.Equal(t, "https://kubejs.com/wiki/recipes/smelting", c.ResolveDocumentationURL(s))
}

func TestOpenDocumentation(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.NewSession("")
	c.SelectTemplate(s, "probeJsBasic")

	var opened []string
	url, err := c.OpenDocumentation(s, OpenerFunc(func(u string) error {
		opened = append(opened, u)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, ProbeJSURL, url)
	assert.Equal(t, []string{ProbeJSURL}, opened)
	assert.Equal(t, "Opening documentation: "+ProbeJSURL, s.Status().Current().Text)

	_, err = c.OpenDocumentation(s, OpenerFunc(func(string) error { return errors.New("no browser") }))
	require.Error(t, err)
	assert.True(t, s.Status().Current().IsError)
}

func TestEndToEndSidebarSelection(t *testing.T) {
	c, _, reg := newTestController(t)
	s := c.NewSession("")

	var shapedID string
	for _, cat := range reg.Categories() {
		for _, item := range cat.Items {
			if item.Name == "Shaped Crafting Recipe" {
				shapedID = item.TemplateID
			}
		}
	}
	require.NotEmpty(t, shapedID)

	prompted := false
	confirm := func(string) bool { prompted = true; return true }

	assert.True(t, c.LoadTemplateWithConfirmation(s, shapedID, confirm))
	assert.False(t, prompted)

	c.Edit(s, s.Text()+"\n// tweak")
	assert.True(t, c.LoadTemplateWithConfirmation(s, "smithingRecipe", confirm))
	assert.True(t, prompted)
}
