package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dpshade/kubejs-editor/internal/layout"
	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/session"
)

// Message ops sent by the browser.
const (
	OpEdit    = "edit"
	OpSelect  = "select"
	OpConfirm = "confirm"
	OpLoad    = "load"
	OpAux     = "aux"
	OpSave    = "save"
	OpUpload  = "upload"
	OpDocs    = "docs"
	OpResize  = "resize"
)

// Message ops sent by the server. OpConfirm is shared: the server asks, the
// browser answers.
const (
	OpBuffer   = "buffer"
	OpStatus   = "status"
	OpDownload = "download"
	OpOpen     = "open"
	OpLayout   = "layout"
	OpError    = "error"
	OpPing     = "ping"
)

const (
	pingInterval = 54 * time.Second
	sendBuffer   = 64
)

// ClientMessage is a request from the browser.
type ClientMessage struct {
	Op       string  `json:"op"`
	Text     string  `json:"text,omitempty"`
	Template string  `json:"template,omitempty"`
	Accept   bool    `json:"accept,omitempty"`
	Name     string  `json:"name,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
}

// ServerMessage is pushed to the browser.
type ServerMessage struct {
	Op       string                `json:"op"`
	State    *session.State        `json:"state,omitempty"`
	Prompt   string                `json:"prompt,omitempty"`
	Status   *models.StatusMessage `json:"status,omitempty"`
	Artifact *models.Artifact      `json:"artifact,omitempty"`
	URL      string                `json:"url,omitempty"`
	Layout   *layout.Layout        `json:"layout,omitempty"`
	Error    string                `json:"error,omitempty"`
}

type wsClient struct {
	// ctx ends with the connection and cancels in-flight loads
	ctx     context.Context
	server  *WebServer
	conn    *websocket.Conn
	session *session.Session
	send    chan ServerMessage
	done    chan struct{}
}

type messageHandler func(c *wsClient, msg ClientMessage) error

var handlers = map[string]messageHandler{
	OpEdit:    handleEdit,
	OpSelect:  handleSelect,
	OpConfirm: handleConfirm,
	OpLoad:    handleLoad,
	OpAux:     handleAux,
	OpSave:    handleSave,
	OpUpload:  handleUpload,
	OpDocs:    handleDocs,
	OpResize:  handleResize,
}

// handleWebSocket upgrades the connection and starts a fresh editing session
func (s *WebServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	// Reads are not size limited; scripts of any length are accepted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := s.service.Controller()
	c := &wsClient{
		ctx:     ctx,
		server:  s,
		conn:    conn,
		session: controller.NewSession(""),
		send:    make(chan ServerMessage, sendBuffer),
		done:    make(chan struct{}),
	}

	unsubscribe := c.session.Status().OnChange(func(msg models.StatusMessage) {
		c.push(ServerMessage{Op: OpStatus, Status: &msg})
	})

	// Initial state first, then the default template so its status follows
	c.pushState()
	if def := s.service.Config().DefaultTemplate; def != "" && controller.LoadTemplate(c.session, def) {
		c.pushState()
	}

	s.mu.Lock()
	s.clients[c.session.ID] = c
	s.mu.Unlock()
	slog.Debug("editor session opened", "session", c.session.ID)

	go c.writePump()
	c.readPump()

	unsubscribe()
	c.session.Close()
	close(c.done)

	s.mu.Lock()
	delete(s.clients, c.session.ID)
	s.mu.Unlock()
	slog.Debug("editor session closed", "session", c.session.ID)
}

// push queues msg for the browser. Messages are dropped once the session has
// ended or the browser stops reading.
func (c *wsClient) push(msg ServerMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		slog.Warn("dropping message for slow client", "session", c.session.ID, "op", msg.Op)
	}
}

func (c *wsClient) pushState() {
	st := c.session.Snapshot()
	c.push(ServerMessage{Op: OpBuffer, State: &st})
}

// writePump is the connection's only writer
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Debug("websocket write failed", "session", c.session.ID, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteJSON(ServerMessage{Op: OpPing}); err != nil {
				return
			}
		}
	}
}

// readPump handles browser messages until the connection drops
func (c *wsClient) readPump() {
	defer c.conn.Close()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.Warn("websocket read failed", "session", c.session.ID, "error", err)
			}
			return
		}

		handler, ok := handlers[msg.Op]
		if !ok {
			c.push(ServerMessage{Op: OpError, Error: fmt.Sprintf("unknown op: %s", msg.Op)})
			continue
		}
		if err := handler(c, msg); err != nil {
			c.push(ServerMessage{Op: OpError, Error: err.Error()})
		}
	}
}

func handleEdit(c *wsClient, msg ClientMessage) error {
	c.server.service.Controller().Edit(c.session, msg.Text)
	return nil
}

// handleSelect is a sidebar click
func handleSelect(c *wsClient, msg ClientMessage) error {
	if c.server.service.Controller().SelectTemplate(c.session, msg.Template) {
		c.push(ServerMessage{Op: OpConfirm, Prompt: session.ConfirmPrompt})
		return nil
	}
	c.pushState()
	return nil
}

func handleConfirm(c *wsClient, msg ClientMessage) error {
	controller := c.server.service.Controller()
	if msg.Accept {
		controller.ConfirmSelection(c.session)
	} else {
		controller.CancelSelection(c.session)
	}
	c.pushState()
	return nil
}

// handleLoad is a search result click; it never asks for confirmation
func handleLoad(c *wsClient, msg ClientMessage) error {
	c.server.service.Controller().LoadTemplate(c.session, msg.Template)
	c.pushState()
	return nil
}

func handleAux(c *wsClient, msg ClientMessage) error {
	c.server.service.Controller().SetAuxSelection(c.session, msg.Template)
	return nil
}

func handleSave(c *wsClient, msg ClientMessage) error {
	artifact := c.server.service.Controller().SaveFile(c.session)
	c.push(ServerMessage{Op: OpDownload, Artifact: &artifact})
	return nil
}

// handleUpload receives a file the browser has already read
func handleUpload(c *wsClient, msg ClientMessage) error {
	// Failures are reported through the status line
	err := c.server.service.Controller().LoadFile(c.ctx, c.session, msg.Name, strings.NewReader(msg.Text))
	if err == nil && msg.Name != "" {
		c.pushState()
	}
	return nil
}

// handleDocs resolves the docs page; the browser opens it in a new tab
func handleDocs(c *wsClient, msg ClientMessage) error {
	opener := session.OpenerFunc(func(url string) error {
		c.push(ServerMessage{Op: OpOpen, URL: url})
		return nil
	})
	_, err := c.server.service.Controller().OpenDocumentation(c.session, opener)
	return err
}

func handleResize(c *wsClient, msg ClientMessage) error {
	l := c.server.service.Layout(msg.Width, msg.Height)
	c.push(ServerMessage{Op: OpLayout, Layout: &l})
	return nil
}
