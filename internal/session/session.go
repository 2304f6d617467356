// Package session implements the editing session: the buffer, the current
// file name, template switching behind a confirmation gate, save and load,
// documentation links and the timed status line.
//
// A Session is plain state. All behaviour lives on Controller, which takes the
// session as an explicit argument so one controller can drive any number of
// sessions (one per terminal, one per browser tab).
package session

import (
	"sync"
)

// Placeholder is the buffer content of a fresh session.
const Placeholder = "// Welcome to KubeJS Editor!\n// Select a template or start coding...\n"

// Session is one editor's mutable state.
type Session struct {
	ID string

	mu           sync.Mutex
	text         string
	filename     string
	activeID     string
	auxSelection string
	pendingID    string
	hasPending   bool

	status *StatusBoard
}

// State is a point-in-time copy of a session.
type State struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	Filename       string `json:"filename,omitempty"`
	ActiveTemplate string `json:"activeTemplate,omitempty"`
	AuxSelection   string `json:"auxSelection,omitempty"`
	Pending        string `json:"pending,omitempty"`
}

func newSession(id string, clock Clock) *Session {
	return &Session{
		ID:     id,
		text:   Placeholder,
		status: NewStatusBoard(clock),
	}
}

// Text returns the buffer content.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Filename returns the current file name, empty when none was loaded.
func (s *Session) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filename
}

// ActiveTemplate returns the highlighted sidebar template id.
func (s *Session) ActiveTemplate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// AuxSelection returns the value of the auxiliary template selector.
func (s *Session) AuxSelection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auxSelection
}

// Pending returns the template awaiting confirmation, if any.
func (s *Session) Pending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingID, s.hasPending
}

// Status returns the session's status board.
func (s *Session) Status() *StatusBoard {
	return s.status
}

// Snapshot copies the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:             s.ID,
		Text:           s.text,
		Filename:       s.filename,
		ActiveTemplate: s.activeID,
		AuxSelection:   s.auxSelection,
		Pending:        s.pendingID,
	}
}

// Close stops the status timer. The session must not be used afterwards.
func (s *Session) Close() {
	s.status.Close()
}
