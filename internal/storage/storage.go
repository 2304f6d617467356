package storage

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dpshade/kubejs-editor/internal/config"
	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/models"
)

// OverlayExt is the extension of user template files.
const OverlayExt = ".tmpl"

// Storage handles file system operations for overlays and scripts
type Storage struct {
	rootPath string
}

// NewStorage creates a new storage instance rooted at rootPath, or at the
// default data directory when rootPath is empty.
func NewStorage(rootPath string) (*Storage, error) {
	if rootPath == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, err
		}
		rootPath = dir
	}

	return &Storage{
		rootPath: rootPath,
	}, nil
}

// InitLibrary creates the directory structure of the data directory
func (s *Storage) InitLibrary() error {
	dirs := []string{
		s.rootPath,
		s.TemplatesDir(),
		s.ScriptsDir(),
		s.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.StorageError(fmt.Sprintf("create directory %s", dir), err)
		}
	}

	return nil
}

// GetBaseDir returns the root path of the storage
func (s *Storage) GetBaseDir() string {
	return s.rootPath
}

// TemplatesDir holds user overlay templates.
func (s *Storage) TemplatesDir() string {
	return filepath.Join(s.rootPath, "templates")
}

// ScriptsDir is where saved scripts land by default.
func (s *Storage) ScriptsDir() string {
	return filepath.Join(s.rootPath, "scripts")
}

// LogsDir holds the error log.
func (s *Storage) LogsDir() string {
	return filepath.Join(s.rootPath, "logs")
}

// LoadTemplate loads an overlay template from a file with YAML frontmatter
func (s *Storage) LoadTemplate(path string) (*models.TemplateEntry, error) {
	fullPath := filepath.Join(s.rootPath, path)

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	entry, err := parseTemplateFile(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if entry.ID == "" {
		entry.ID = strings.TrimSuffix(filepath.Base(path), OverlayExt)
	}

	entry.FilePath = path
	return entry, nil
}

// SaveTemplate writes an entry into the overlay directory as <id>.tmpl
func (s *Storage) SaveTemplate(entry *models.TemplateEntry) (string, error) {
	if entry.ID == "" {
		return "", apperrors.NewAppError(apperrors.ErrCodeMissingField, "Template id is required")
	}

	data, err := serializeTemplate(entry)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.TemplatesDir(), 0755); err != nil {
		return "", apperrors.StorageError("create templates directory", err)
	}

	fullPath := filepath.Join(s.TemplatesDir(), entry.ID+OverlayExt)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", apperrors.StorageError("write template", err)
	}
	return fullPath, nil
}

// ListTemplateOverlays returns every parsable overlay template, sorted by
// path. A missing directory yields none; unreadable files are skipped.
func (s *Storage) ListTemplateOverlays() ([]models.TemplateEntry, error) {
	templatesDir := s.TemplatesDir()
	if _, err := os.Stat(templatesDir); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.Walk(templatesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, OverlayExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.StorageError("walk templates directory", err)
	}
	sort.Strings(paths)

	var entries []models.TemplateEntry
	for _, path := range paths {
		relPath, _ := filepath.Rel(s.rootPath, path)
		entry, err := s.LoadTemplate(relPath)
		if err != nil {
			slog.Warn("Skipping overlay template",
				"path", relPath,
				"error", err,
			)
			continue
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

// ReadScript reads a script file. The read is abandoned if ctx is done
// before it completes.
func (s *Storage) ReadScript(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.FileNotFoundError(path, err)
		}
		return "", apperrors.StorageError("open script", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", apperrors.StorageError("read script", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(content), nil
}

// WriteScript writes a saved artifact into dir, or the scripts directory
// when dir is empty, and returns the written path.
func (s *Storage) WriteScript(dir string, artifact models.Artifact) (string, error) {
	if dir == "" {
		dir = s.ScriptsDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.StorageError("create scripts directory", err)
	}

	fullPath := filepath.Join(dir, filepath.Base(artifact.Name))
	if err := os.WriteFile(fullPath, []byte(artifact.Content), 0644); err != nil {
		return "", apperrors.StorageError("write script", err)
	}
	return fullPath, nil
}

// Helper functions

func parseTemplateFile(content []byte) (*models.TemplateEntry, error) {
	reader := bufio.NewReader(bytes.NewReader(content))

	// Check for frontmatter delimiter
	first, err := reader.ReadString('\n')
	if err != nil || strings.TrimRight(first, "\r\n") != "---" {
		return nil, fmt.Errorf("missing frontmatter delimiter")
	}

	// Read frontmatter
	var frontmatterLines []string
	closed := false
	for {
		line, err := reader.ReadString('\n')
		if strings.TrimRight(line, "\r\n") == "---" {
			closed = true
			break
		}
		frontmatterLines = append(frontmatterLines, strings.TrimRight(line, "\r\n"))
		if err != nil {
			break
		}
	}
	if !closed {
		return nil, fmt.Errorf("unterminated frontmatter")
	}

	// Parse YAML frontmatter
	frontmatter := strings.Join(frontmatterLines, "\n")
	var entry models.TemplateEntry
	if err := yaml.Unmarshal([]byte(frontmatter), &entry); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	// The body is kept byte for byte apart from the blank separator lines
	body, _ := io.ReadAll(reader)
	entry.Source = strings.TrimLeft(string(body), "\r\n")

	return &entry, nil
}

// serializeTemplate converts an entry to YAML frontmatter + script body
func serializeTemplate(entry *models.TemplateEntry) ([]byte, error) {
	var buf bytes.Buffer

	// Write frontmatter delimiter
	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(entry); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	// Write closing delimiter
	buf.WriteString("---\n")

	if entry.Source != "" {
		buf.WriteString("\n")
		buf.WriteString(entry.Source)
	}

	return buf.Bytes(), nil
}
