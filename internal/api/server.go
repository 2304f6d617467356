// Package api provides the RESTful HTTP API for kubejs-editor.
//
// SYSTEM ARCHITECTURE ROLE:
// This module exposes the template catalog, completion list, grammar bundle and
// documentation lookup over HTTP. The web editor bootstraps from it and any
// external tool can query the catalog the same way the CLI does.
//
// KEY RESPONSIBILITIES:
// - Route catalog queries through CommandExecutor so every surface shares one code path
// - Apply the middleware stack (logging, CORS, content type, panic recovery)
// - Validate request parameters with RequestValidator before handlers run
// - Standardize responses with a consistent JSON envelope
//
// INTEGRATION POINTS:
// - internal/commands/types.go: handlers execute operations through CommandExecutor
// - internal/errors/handlers.go: HTTPErrorHandler formats error responses and picks status codes
// - internal/validation/middleware.go: ValidateRequest() guards routes that take parameters
// - internal/server/server.go: Routes() is mounted under /api/v1 next to the web editor
// - internal/api/openapi.go: self-description at /openapi.json and /reference
//
// ENDPOINT STRUCTURE:
// - /templates, /templates/{id}: catalog listing and single template cards
// - /categories: sidebar grouping
// - /search?q=: title search
// - /completions, /language: editor bootstrap data
// - /docs: documentation URL resolution (GET query or POST body)
// - /layout?w=&h=: responsive layout for a viewport
// - /export?format=: catalog download as json, yaml or xlsx
// - /health: service status
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dpshade/kubejs-editor/internal/commands"
	"github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/export"
	"github.com/dpshade/kubejs-editor/internal/service"
	"github.com/dpshade/kubejs-editor/internal/validation"
)

// APIServer serves the REST API. It does not listen on its own; Routes() is
// mounted by the web server.
type APIServer struct {
	service      *service.Service
	executor     *commands.CommandExecutor
	errorHandler *errors.HTTPErrorHandler
	validator    *validation.RequestValidator
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *service.Service) *APIServer {
	return &APIServer{
		service:      svc,
		executor:     commands.NewCommandExecutor(svc),
		errorHandler: errors.NewHTTPErrorHandler(true),
		validator:    validation.NewRequestValidator(),
	}
}

// Routes returns the API router
func (s *APIServer) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware, s.corsMiddleware, s.contentTypeMiddleware, s.errorMiddleware)

	r.With(s.validator.ValidateRequest("list_templates")).Get("/templates", s.handleTemplates)
	r.With(s.validator.ValidateRequest("get_template")).Get("/templates/{id}", s.handleTemplateByID)
	r.Get("/categories", s.handleCategories)
	r.Get("/search", s.handleSearch)
	r.Get("/completions", s.handleCompletions)
	r.Get("/language", s.handleLanguage)
	r.With(s.validator.ValidateRequest("resolve_docs")).Get("/docs", s.handleDocs)
	r.With(s.validator.ValidateRequest("resolve_docs")).Post("/docs", s.handleDocs)
	r.Get("/layout", s.handleLayout)
	r.With(s.validator.ValidateRequest("export_catalog")).Get("/export", s.handleExport)
	r.Get("/health", s.handleHealth)

	r.Get("/openapi.json", s.handleOpenAPISpec)
	r.Get("/reference", s.handleOpenAPI)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.NotFoundError("endpoint").WithContext("path", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.InvalidCommandError(r.Method, "method not allowed on "+r.URL.Path))
	})

	return r
}

// loggingMiddleware logs HTTP requests
func (s *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("api request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr, "duration", time.Since(start))
	})
}

// corsMiddleware handles CORS headers
func (s *APIServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// contentTypeMiddleware sets default content type
func (s *APIServer) contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// errorMiddleware recovers from handler panics
func (s *APIServer) errorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic in handler", "path", r.URL.Path, "panic", err)
				s.writeError(w, errors.InternalError("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// writeResponse writes a standardized JSON response
func (s *APIServer) writeResponse(w http.ResponseWriter, data interface{}, message string, statusCode int) {
	response := APIResponse{
		Success:   statusCode < 400,
		Data:      data,
		Message:   message,
		Timestamp: time.Now(),
	}

	w.WriteHeader(statusCode)

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		json.NewEncoder(w).Encode(response)
		return
	}

	w.Write(jsonData)
}

// writeError writes an error response using the error handler
func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

// run executes a command and writes its result
func (s *APIServer) run(ctx context.Context, w http.ResponseWriter, name string, params map[string]interface{}) {
	result, err := s.executor.Execute(ctx, name, params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !result.Success {
		appErr := &errors.AppError{
			Code:     errors.ErrorCode(result.Error.Code),
			Message:  result.Error.Message,
			Details:  result.Error.Details,
			Category: errors.ErrorCategory(result.Error.Category),
			Severity: errors.ErrorSeverity(result.Error.Severity),
		}
		s.writeError(w, appErr)
		return
	}

	s.writeResponse(w, result.Data, result.Message, http.StatusOK)
}

// handleTemplates handles GET /templates
func (s *APIServer) handleTemplates(w http.ResponseWriter, r *http.Request) {
	s.run(r.Context(), w, "list", validation.ValidatedData(r))
}

// handleTemplateByID handles GET /templates/{id}
func (s *APIServer) handleTemplateByID(w http.ResponseWriter, r *http.Request) {
	s.run(r.Context(), w, "get", validation.ValidatedData(r))
}

// handleCategories handles GET /categories
func (s *APIServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.run(r.Context(), w, "categories", nil)
}

// handleSearch handles GET /search?q=
func (s *APIServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		query = r.URL.Query().Get("query")
	}
	s.run(r.Context(), w, "search", map[string]interface{}{"query": query})
}

// handleCompletions handles GET /completions
func (s *APIServer) handleCompletions(w http.ResponseWriter, r *http.Request) {
	s.run(r.Context(), w, "completions", nil)
}

// handleLanguage handles GET /language
func (s *APIServer) handleLanguage(w http.ResponseWriter, r *http.Request) {
	s.run(r.Context(), w, "language", nil)
}

// handleDocs handles GET and POST /docs. Script content usually arrives in a
// POST body; short lookups fit in the query string.
func (s *APIServer) handleDocs(w http.ResponseWriter, r *http.Request) {
	s.run(r.Context(), w, "docs", validation.ValidatedData(r))
}

// handleLayout handles GET /layout?w=&h=
func (s *APIServer) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := map[string]interface{}{}
	for short, long := range map[string]string{"w": "width", "h": "height"} {
		if v := q.Get(long); v != "" {
			params[long] = v
		} else if v := q.Get(short); v != "" {
			params[long] = v
		}
	}
	s.run(r.Context(), w, "layout", params)
}

// handleExport handles GET /export?format=. The body is the exported file,
// not the JSON envelope.
func (s *APIServer) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(validation.ValidatedData(r)["format"].(string))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="kubejs-catalog.`+string(format)+`"`)
	if err := s.service.Export(w, format); err != nil {
		slog.Error("export failed", "format", format, "error", err)
	}
}

// handleHealth handles GET /health
func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.run(r.Context(), w, "health", nil)
}
