package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/dpshade/kubejs-editor/internal/catalog"
	"github.com/dpshade/kubejs-editor/internal/completion"
	"github.com/dpshade/kubejs-editor/internal/config"
	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/export"
	"github.com/dpshade/kubejs-editor/internal/git"
	"github.com/dpshade/kubejs-editor/internal/grammar"
	"github.com/dpshade/kubejs-editor/internal/importer"
	"github.com/dpshade/kubejs-editor/internal/layout"
	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/search"
	"github.com/dpshade/kubejs-editor/internal/session"
	"github.com/dpshade/kubejs-editor/internal/storage"
)

// Options configures NewService.
type Options struct {
	// Dir is the data directory. Empty means $KUBEJS_EDITOR_DIR or ~/.kubejs-editor.
	Dir string
	// Clock drives status timers. Nil means real time.
	Clock session.Clock
}

// Service wires the catalog, search, completion and session layers together
// for the CLI, TUI and web surfaces.
type Service struct {
	storage    *storage.Storage
	config     config.EditorConfig
	registry   *catalog.Registry
	index      *search.Index
	completion *completion.Adapter
	controller *session.Controller
	sync       *git.LibrarySync
}

// LanguageBundle is what the web editor needs to register the language.
type LanguageBundle struct {
	ID            string                        `json:"id"`
	Monarch       json.RawMessage               `json:"monarch"`
	Configuration grammar.LanguageConfiguration `json:"configuration"`
	Options       map[string]interface{}        `json:"options"`
}

// NewService creates a new service instance. The catalog is built once from
// the embedded templates plus any overlays in the data directory.
func NewService(opts Options) (*Service, error) {
	store, err := storage.NewStorage(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	cfg, err := config.Load(store.GetBaseDir())
	if err != nil {
		return nil, err
	}

	sources := []catalog.Source{catalog.Builtin()}
	overlays, err := store.ListTemplateOverlays()
	if err != nil {
		return nil, err
	}
	if len(overlays) > 0 {
		sources = append(sources, catalog.FromEntries(store.TemplatesDir(), overlays))
	}

	registry, err := catalog.New(sources...)
	if err != nil {
		return nil, err
	}
	if shadowed := registry.Shadowed(); len(shadowed) > 0 {
		slog.Info("Catalog built with overrides", "count", len(shadowed))
	}

	return &Service{
		storage:    store,
		config:     cfg,
		registry:   registry,
		index:      search.Build(registry),
		completion: completion.NewAdapter(registry),
		controller: session.NewController(registry, opts.Clock),
		sync:       git.NewLibrarySync(store.GetBaseDir()),
	}, nil
}

// InitLibrary creates the data directory layout
func (s *Service) InitLibrary() error {
	return s.storage.InitLibrary()
}

// Storage returns the file storage layer
func (s *Service) Storage() *storage.Storage {
	return s.storage
}

// Controller returns the session controller shared by every surface
func (s *Service) Controller() *session.Controller {
	return s.controller
}

// Registry returns the template catalog
func (s *Service) Registry() *catalog.Registry {
	return s.registry
}

// Sync returns the data directory's git synchronisation
func (s *Service) Sync() *git.LibrarySync {
	return s.sync
}

// commitLibrary records data directory changes when it is a git repository.
// Failures are logged; the change itself has already been written.
func (s *Service) commitLibrary(message string) {
	if _, err := s.sync.SyncChanges(context.Background(), message); err != nil {
		slog.Warn("Library sync failed", "error", err)
	}
}

// Config returns the editor preferences
func (s *Service) Config() config.EditorConfig {
	return s.config
}

// ApplyConfig replaces the preferences after validating them. Command-line
// flags go through here.
func (s *Service) ApplyConfig(cfg config.EditorConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// ListTemplates returns every template in catalog order
func (s *Service) ListTemplates() []models.TemplateEntry {
	return s.registry.All()
}

// GetTemplate retrieves a template by id
func (s *Service) GetTemplate(id string) (*models.TemplateEntry, error) {
	entry, ok := s.registry.Get(id)
	if !ok {
		return nil, apperrors.NotFoundError("template").WithContext("id", id)
	}
	return entry, nil
}

// Categories returns the sidebar grouping
func (s *Service) Categories() []models.Category {
	return s.registry.Categories()
}

// SearchTemplates matches template titles against query
func (s *Service) SearchTemplates(query string) []models.SearchResult {
	return s.index.Search(query)
}

// Completions returns the full completion list
func (s *Service) Completions() []models.CompletionItem {
	return s.completion.List()
}

// ResolveDocs picks a documentation URL the same way an editing session does
func (s *Service) ResolveDocs(templateID, selection, content string) string {
	return s.controller.Docs().Resolve(templateID, selection, content)
}

// TemplateDocsURL returns the documentation URL mapped to id, or "".
func (s *Service) TemplateDocsURL(id string) string {
	url, _ := s.controller.Docs().TemplateURL(id)
	return url
}

// Language bundles the grammar, language configuration and widget options
func (s *Service) Language() LanguageBundle {
	return LanguageBundle{
		ID:            grammar.LanguageID,
		Monarch:       grammar.Monarch(),
		Configuration: grammar.Language(),
		Options:       s.config.MonacoOptions(),
	}
}

// Layout computes the responsive layout for a viewport
func (s *Service) Layout(width, height float64) layout.Layout {
	return layout.Compute(width, height)
}

// SaveOverlay writes entry into the overlay directory. It takes effect on
// the next start.
func (s *Service) SaveOverlay(entry *models.TemplateEntry) (string, error) {
	path, err := s.storage.SaveTemplate(entry)
	if err != nil {
		return "", err
	}
	s.commitLibrary("Save template " + entry.ID)
	return path, nil
}

// Export writes the catalog and completions in format
func (s *Service) Export(w io.Writer, format export.Format) error {
	doc := export.Build(s.registry.All(), s.TemplateDocsURL, s.completion.List())
	return export.Write(w, format, doc)
}

// ImportScripts copies the .js files under opts.Path into the overlay
// directory. Imported templates appear in the catalog on the next start.
func (s *Service) ImportScripts(opts importer.ImportOptions) (*importer.ImportResult, error) {
	if err := s.storage.InitLibrary(); err != nil {
		return nil, err
	}
	result, err := importer.NewScriptImporter(s.registry, s.storage).Import(opts)
	if err != nil {
		return result, err
	}
	slog.Info("Imported scripts", "path", opts.Path, "count", len(result.Templates), "skipped", len(result.Skipped), "dryRun", opts.DryRun)
	if len(result.Written) > 0 {
		s.commitLibrary(fmt.Sprintf("Import %d scripts", len(result.Written)))
	}
	return result, nil
}

// ImportGitRepo clones a modpack repository and imports its scripts
func (s *Service) ImportGitRepo(ctx context.Context, opts importer.GitImportOptions) (*importer.GitImportResult, error) {
	if err := s.storage.InitLibrary(); err != nil {
		return nil, err
	}
	scripts := importer.NewScriptImporter(s.registry, s.storage)
	result, err := importer.NewGitRepoImporter(scripts).ImportFromGitRepo(ctx, opts)
	if err != nil {
		return result, err
	}
	slog.Info("Imported repository", "url", opts.RepoURL, "count", len(result.Templates))
	if len(result.Written) > 0 {
		s.commitLibrary("Import " + opts.RepoURL)
	}
	return result, nil
}
