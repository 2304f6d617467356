package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/dpshade/kubejs-editor/internal/models"
)

const (
	// ConfirmPrompt is asked before a template replaces edited code.
	ConfirmPrompt = "Loading a template will replace your current code. Continue?"
	// DefaultFileName names saves of buffers that were never loaded from a file.
	DefaultFileName = "kubejs-script.js"
	// ScriptMIMEType is the type of saved artifacts.
	ScriptMIMEType = "text/javascript"
	// ScriptExt is the only extension offered when loading files.
	ScriptExt = ".js"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

// Open calls f(url).
func (f OpenerFunc) Open(url string) error { return f(url) }

// Controller carries out editor operations on sessions.
type Controller struct {
	templates TemplateLookup
	docs      *DocsResolver
	clock     Clock
}

// NewController creates a controller over the template catalog. A nil clock
// means real time.
func NewController(templates TemplateLookup, clock Clock) *Controller {
	if clock == nil {
		clock = RealClock()
	}
	return &Controller{
		templates: templates,
		docs:      NewDocsResolver(templates),
		clock:     clock,
	}
}

// Docs returns the controller's documentation resolver.
func (c *Controller) Docs() *DocsResolver {
	return c.docs
}

// NewSession starts a session showing the placeholder, or defaultTemplate
// when it names a catalog entry.
func (c *Controller) NewSession(defaultTemplate string) *Session {
	s := newSession(uuid.NewString(), c.clock)
	if defaultTemplate != "" {
		c.LoadTemplate(s, defaultTemplate)
	}
	return s
}

// Edit replaces the buffer with text typed into the widget.
func (c *Controller) Edit(s *Session, text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

// LoadTemplate replaces the buffer with the template's text. Unknown ids are
// ignored and report false.
func (c *Controller) LoadTemplate(s *Session, id string) bool {
	entry, ok := c.templates.Get(id)
	if !ok {
		return false
	}

	s.mu.Lock()
	s.text = entry.Source
	s.mu.Unlock()

	c.SetStatus(s, fmt.Sprintf("Loaded %s template", id), false)
	return true
}

// NeedsConfirmation reports whether replacing the buffer would discard edits.
func (c *Controller) NeedsConfirmation(s *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return needsConfirmation(s.text)
}

func needsConfirmation(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed != "" && trimmed != strings.TrimSpace(Placeholder)
}

// SelectTemplate marks id active and loads it. When the buffer holds edits
// the load is held back until ConfirmSelection and true is returned.
func (c *Controller) SelectTemplate(s *Session, id string) (needsConfirm bool) {
	if _, ok := c.templates.Get(id); !ok {
		return false
	}

	s.mu.Lock()
	s.activeID = id
	if needsConfirmation(s.text) {
		s.pendingID = id
		s.hasPending = true
		s.mu.Unlock()
		return true
	}
	s.pendingID = ""
	s.hasPending = false
	s.mu.Unlock()

	c.LoadTemplate(s, id)
	return false
}

// ConfirmSelection loads the template held back by SelectTemplate.
func (c *Controller) ConfirmSelection(s *Session) bool {
	s.mu.Lock()
	id, ok := s.pendingID, s.hasPending
	s.pendingID = ""
	s.hasPending = false
	s.mu.Unlock()

	if !ok {
		return false
	}
	return c.LoadTemplate(s, id)
}

// CancelSelection drops the held-back template and clears the active
// highlight. The buffer is untouched and no message is shown.
func (c *Controller) CancelSelection(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasPending {
		return
	}
	if s.activeID == s.pendingID {
		s.activeID = ""
	}
	s.pendingID = ""
	s.hasPending = false
}

// LoadTemplateWithConfirmation is SelectTemplate with a blocking prompt.
func (c *Controller) LoadTemplateWithConfirmation(s *Session, id string, confirm ConfirmFunc) bool {
	if _, ok := c.templates.Get(id); !ok {
		return false
	}
	if !c.SelectTemplate(s, id) {
		return true
	}
	if confirm != nil && confirm(ConfirmPrompt) {
		return c.ConfirmSelection(s)
	}
	c.CancelSelection(s)
	return false
}

// SetAuxSelection records the auxiliary selector's value. It only affects
// documentation lookup.
func (c *Controller) SetAuxSelection(s *Session, id string) {
	s.mu.Lock()
	s.auxSelection = id
	s.mu.Unlock()
}

// SaveFile packages the buffer as a downloadable script.
func (c *Controller) SaveFile(s *Session) models.Artifact {
	s.mu.Lock()
	name := s.filename
	if name == "" {
		name = DefaultFileName
	}
	artifact := models.Artifact{
		Name:     name,
		MIMEType: ScriptMIMEType,
		Content:  s.text,
	}
	s.mu.Unlock()

	c.SetStatus(s, fmt.Sprintf("Saved as %s", name), false)
	return artifact
}

// LoadFile reads a chosen file into the buffer. An empty name means no file
// was chosen. A failed or cancelled read leaves the buffer as it was. When
// loads overlap, the last one to finish wins.
func (c *Controller) LoadFile(ctx context.Context, s *Session, name string, r io.Reader) error {
	if name == "" {
		return nil
	}

	content, err := readAll(ctx, r)
	if err != nil {
		c.SetStatus(s, fmt.Sprintf("Failed to load %s: %v", name, err), true)
		return err
	}

	s.mu.Lock()
	s.text = content
	s.filename = name
	s.mu.Unlock()

	c.SetStatus(s, fmt.Sprintf("Loaded %s", name), false)
	return nil
}

// readAll reads r on its own goroutine so a cancelled ctx returns promptly.
func readAll(ctx context.Context, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no content")
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		return string(res.data), nil
	}
}

// ResolveDocumentationURL picks the most specific documentation page.
func (c *Controller) ResolveDocumentationURL(s *Session) string {
	st := s.Snapshot()
	return c.docs.Resolve(st.ActiveTemplate, st.AuxSelection, st.Text)
}

// OpenDocumentation opens the resolved URL and echoes it in the status line.
func (c *Controller) OpenDocumentation(s *Session, opener Opener) (string, error) {
	url := c.ResolveDocumentationURL(s)
	if opener != nil {
		if err := opener.Open(url); err != nil {
			c.SetStatus(s, fmt.Sprintf("Failed to open documentation: %v", err), true)
			return url, err
		}
	}
	c.SetStatus(s, fmt.Sprintf("Opening documentation: %s", url), false)
	return url, nil
}

// SetStatus shows a message that reverts to Ready after StatusTimeout.
func (c *Controller) SetStatus(s *Session, text string, isError bool) {
	s.status.Set(text, isError)
}
