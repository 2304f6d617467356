// Package export writes the template catalog and completion data to json,
// yaml or xlsx for use outside the editor.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	apperrors "github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/models"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Sheet names in the xlsx workbook.
const (
	TemplatesSheet   = "Templates"
	CompletionsSheet = "Completions"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", apperrors.InvalidInputError(fmt.Sprintf("unsupported export format %q (json, yaml, xlsx)", s))
}

// TemplateRow is one exported template.
type TemplateRow struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
	DocsURL  string `json:"docsUrl,omitempty" yaml:"docsUrl,omitempty"`
	Source   string `json:"source" yaml:"source"`
}

// CompletionRow is one exported completion item.
type CompletionRow struct {
	Kind        string `json:"kind" yaml:"kind"`
	Label       string `json:"label" yaml:"label"`
	InsertText  string `json:"insertText" yaml:"insertText"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Document is everything an export contains.
type Document struct {
	Templates   []TemplateRow   `json:"templates" yaml:"templates"`
	Completions []CompletionRow `json:"completions" yaml:"completions"`
}

// Build assembles a document. docsURL may be nil.
func Build(entries []models.TemplateEntry, docsURL func(id string) string, items []models.CompletionItem) Document {
	doc := Document{
		Templates:   make([]TemplateRow, 0, len(entries)),
		Completions: make([]CompletionRow, 0, len(items)),
	}
	for _, e := range entries {
		row := TemplateRow{ID: e.ID, Title: e.Name, Category: e.Category, Source: e.Source}
		if docsURL != nil {
			row.DocsURL = docsURL(e.ID)
		}
		doc.Templates = append(doc.Templates, row)
	}
	for _, it := range items {
		doc.Completions = append(doc.Completions, CompletionRow{
			Kind:        string(it.Kind),
			Label:       it.Label,
			InsertText:  it.InsertText,
			Description: it.Detail,
		})
	}
	return doc
}

// Write encodes doc to w in the given format.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to encode json export")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to encode yaml export")
		}
		return enc.Close()
	case FormatXLSX:
		return writeXLSX(w, doc)
	}
	return apperrors.InvalidInputError(fmt.Sprintf("unsupported export format %q", format))
}

func writeXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplatesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(CompletionsSheet); err != nil {
		return err
	}

	templates := make([][]interface{}, 0, len(doc.Templates))
	for _, t := range doc.Templates {
		templates = append(templates, []interface{}{t.ID, t.Title, t.Category, t.DocsURL, t.Source})
	}
	if err := writeSheet(f, TemplatesSheet, []interface{}{"id", "title", "category", "docs_url", "source"}, templates); err != nil {
		return err
	}

	completions := make([][]interface{}, 0, len(doc.Completions))
	for _, c := range doc.Completions {
		completions = append(completions, []interface{}{c.Kind, c.Label, c.InsertText, c.Description})
	}
	if err := writeSheet(f, CompletionsSheet, []interface{}{"kind", "label", "insert_text", "description"}, completions); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to write xlsx export")
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}
