// Package server hosts the browser editor: the rendered page, its static
// assets, the REST API under /api/v1 and one websocket editing session per
// open tab.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/dpshade/kubejs-editor/internal/api"
	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/service"
)

//go:embed web
var webFS embed.FS

// WebServer serves the editor page and its live sessions
type WebServer struct {
	service  *service.Service
	api      *api.APIServer
	port     int
	page     *template.Template
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.Mutex
	clients map[string]*wsClient
}

// pageData feeds index.html
type pageData struct {
	Title      string
	Theme      string
	Categories []models.Category
}

// NewWebServer creates a web server instance
func NewWebServer(svc *service.Service, port int) (*WebServer, error) {
	page, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &WebServer{
		service: svc,
		api:     api.NewAPIServer(svc),
		port:    port,
		page:    page,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Local tool; the page may be opened from any host name
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*wsClient),
	}, nil
}

// Routes returns the full router
func (s *WebServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Mount("/api/v1", s.api.Routes())

	static, _ := fs.Sub(webFS, "web")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return r
}

// Start begins serving HTTP requests. It blocks until Stop is called or the
// listener fails.
func (s *WebServer) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("Editor server starting", "url", fmt.Sprintf("http://localhost:%d", s.port))
	slog.Info("API reference", "url", fmt.Sprintf("http://localhost:%d/api/v1/reference", s.port))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop closes open sessions and shuts the server down gracefully
func (s *WebServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	for _, c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// SessionCount returns the number of connected editors
func (s *WebServer) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// handleIndex renders the editor page. The sidebar and the template selector
// are both drawn from the catalog's categories.
func (s *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:      "KubeJS Editor",
		Theme:      s.service.Config().Theme,
		Categories: s.service.Categories(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		slog.Error("failed to render page", "error", err)
	}
}
