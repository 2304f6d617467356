// Package importer brings existing KubeJS scripts into the template catalog.
// Scripts are written as overlays in the data directory and show up in the
// sidebar the next time the catalog is built.
package importer

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dpshade/kubejs-editor/internal/models"
)

// DefaultCategory is the sidebar group for imported scripts
const DefaultCategory = "Imported"

// scriptDirs maps KubeJS script folders to their wiki topic
var scriptDirs = map[string]string{
	"startup_scripts": "startup-scripts",
	"server_scripts":  "server-scripts",
	"client_scripts":  "client-scripts",
}

// Catalog reports which template ids are taken
type Catalog interface {
	Has(id string) bool
}

// OverlayWriter persists imported entries
type OverlayWriter interface {
	SaveTemplate(entry *models.TemplateEntry) (string, error)
}

// ScriptImporter imports .js files from a directory tree
type ScriptImporter struct {
	catalog Catalog
	writer  OverlayWriter
}

// NewScriptImporter creates an importer that checks ids against catalog and
// writes through writer
func NewScriptImporter(catalog Catalog, writer OverlayWriter) *ScriptImporter {
	return &ScriptImporter{
		catalog: catalog,
		writer:  writer,
	}
}

// ImportOptions configures the import process
type ImportOptions struct {
	Path     string // Directory to import from (a KubeJS instance, its kubejs/ folder or any tree of .js files)
	Category string // Sidebar group (default: Imported)
	Prefix   string // Prepended to generated ids
	DryRun   bool   // Preview what would be imported without writing

	// Conflict resolution
	OverwriteExisting bool // Shadow catalog entries that already use the id
}

// ImportResult contains the results of an import operation
type ImportResult struct {
	Templates []*models.TemplateEntry // Imported (or, for a dry run, importable) entries
	Written   []string                // Overlay files written
	Skipped   []string                // Ids skipped because they already exist
	Errors    []error                 // Per-file failures; the walk carries on
}

// Import walks options.Path for .js files
func (i *ScriptImporter) Import(options ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	root := options.Path
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return result, fmt.Errorf("failed to read import path: %w", err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("import path %s is not a directory", root)
	}

	// A modpack root keeps its scripts under kubejs/
	if sub := filepath.Join(root, "kubejs"); isDir(sub) {
		root = sub
	}

	category := options.Category
	if category == "" {
		category = DefaultCategory
	}

	seen := make(map[string]bool)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".js") {
			return nil
		}

		entry, err := i.importScriptFile(path, root, category, options.Prefix)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to import %s: %w", path, err))
			return nil // Continue walking
		}

		if seen[entry.ID] || (!options.OverwriteExisting && i.catalog != nil && i.catalog.Has(entry.ID)) {
			result.Skipped = append(result.Skipped, entry.ID)
			return nil
		}
		seen[entry.ID] = true
		result.Templates = append(result.Templates, entry)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	if options.DryRun {
		return result, nil
	}

	for _, entry := range result.Templates {
		path, err := i.writer.SaveTemplate(entry)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to save %s: %w", entry.ID, err))
			continue
		}
		result.Written = append(result.Written, path)
	}
	return result, nil
}

// importScriptFile reads one script into a catalog entry
func (i *ScriptImporter) importScriptFile(path, root, category, prefix string) (*models.TemplateEntry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil, fmt.Errorf("script is empty")
	}

	relPath, err := filepath.Rel(root, path)
	if err != nil {
		relPath = filepath.Base(path)
	}

	return &models.TemplateEntry{
		ID:       generateIDFromPath(prefix, relPath),
		Name:     extractTitle(string(content), path),
		Category: category,
		DocPath:  docsTopic(relPath),
		Source:   string(content),
	}, nil
}

// generateIDFromPath turns server_scripts/ores/tags.js into serverScriptsOresTags
func generateIDFromPath(prefix, relPath string) string {
	trimmed := strings.TrimSuffix(filepath.ToSlash(relPath), filepath.Ext(relPath))

	var b strings.Builder
	upper := false
	for _, r := range prefix + "/" + trimmed {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if b.Len() == 0 {
				b.WriteRune(unicode.ToLower(r))
			} else if upper {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(r)
			}
			upper = false
		default:
			upper = b.Len() > 0
		}
	}
	return b.String()
}

// extractTitle uses a leading line comment, or the file name
func extractTitle(content, filePath string) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "// priority:") {
			continue
		}
		if title, ok := strings.CutPrefix(line, "//"); ok {
			if title = strings.TrimSpace(title); title != "" {
				return title
			}
		}
		break
	}

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// docsTopic maps the script's KubeJS folder to a wiki topic
func docsTopic(relPath string) string {
	first, _, _ := strings.Cut(filepath.ToSlash(relPath), "/")
	return scriptDirs[first]
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
