// Package commands/template_commands implements the catalog query commands.
//
// COMMAND IMPLEMENTATIONS:
// - ListTemplatesCommand: lists templates, optionally limited to one category
// - GetTemplateCommand: returns one template with its resolved documentation URL
// - ListCategoriesCommand: returns the sidebar grouping
// - SearchTemplatesCommand: runs the title search used by the sidebar search box
package commands

import (
	"context"
	"fmt"

	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/renderer"
	"github.com/dpshade/kubejs-editor/internal/service"
)

// ListTemplatesCommand lists all templates with optional category filtering
type ListTemplatesCommand struct {
	service  *service.Service
	Category string
	Format   string
}

func (c *ListTemplatesCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *ListTemplatesCommand) SetParameters(params map[string]interface{}) error {
	if category, ok := params["category"].(string); ok {
		c.Category = category
	}
	if format, ok := params["format"].(string); ok {
		c.Format = format
	}
	return nil
}

func (c *ListTemplatesCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *ListTemplatesCommand) GetName() string {
	return "list"
}

func (c *ListTemplatesCommand) GetDescription() string {
	return "List all templates with optional filtering by category"
}

func (c *ListTemplatesCommand) Execute(ctx context.Context) (*CommandResult, error) {
	var templates []models.TemplateEntry
	for _, entry := range c.service.ListTemplates() {
		if c.Category != "" && entry.Category != c.Category {
			continue
		}
		templates = append(templates, entry)
	}

	if c.Format == "ids" {
		ids := make([]string, len(templates))
		for i, entry := range templates {
			ids[i] = entry.ID
		}
		return &CommandResult{
			Success: true,
			Data:    ids,
			Message: fmt.Sprintf("Found %d templates", len(ids)),
		}, nil
	}

	if templates == nil {
		templates = []models.TemplateEntry{}
	}
	return &CommandResult{
		Success: true,
		Data:    templates,
		Message: fmt.Sprintf("Found %d templates", len(templates)),
	}, nil
}

// GetTemplateCommand retrieves a specific template by ID
type GetTemplateCommand struct {
	service *service.Service
	ID      string
}

func (c *GetTemplateCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *GetTemplateCommand) SetParameters(params map[string]interface{}) error {
	if id, ok := params["id"].(string); ok {
		c.ID = id
	}
	return nil
}

func (c *GetTemplateCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	if c.ID == "" {
		return fmt.Errorf("template ID is required")
	}
	return nil
}

func (c *GetTemplateCommand) GetName() string {
	return "get"
}

func (c *GetTemplateCommand) GetDescription() string {
	return "Get a template by ID with its documentation link"
}

func (c *GetTemplateCommand) Execute(ctx context.Context) (*CommandResult, error) {
	entry, err := c.service.GetTemplate(c.ID)
	if err != nil {
		return nil, err
	}

	return &CommandResult{
		Success: true,
		Data: renderer.Card{
			ID:       entry.ID,
			Title:    entry.Name,
			Category: entry.Category,
			DocsURL:  c.service.TemplateDocsURL(entry.ID),
			Source:   entry.Source,
		},
		Message: fmt.Sprintf("Retrieved template '%s'", entry.ID),
	}, nil
}

// ListCategoriesCommand returns the sidebar grouping
type ListCategoriesCommand struct {
	service *service.Service
}

func (c *ListCategoriesCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *ListCategoriesCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *ListCategoriesCommand) GetName() string {
	return "categories"
}

func (c *ListCategoriesCommand) GetDescription() string {
	return "List template categories in sidebar order"
}

func (c *ListCategoriesCommand) Execute(ctx context.Context) (*CommandResult, error) {
	categories := c.service.Categories()
	return &CommandResult{
		Success: true,
		Data:    categories,
		Message: fmt.Sprintf("Found %d categories", len(categories)),
	}, nil
}

// SearchTemplatesCommand matches template titles
type SearchTemplatesCommand struct {
	service *service.Service
	Query   string
}

func (c *SearchTemplatesCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *SearchTemplatesCommand) SetParameters(params map[string]interface{}) error {
	if query, ok := params["query"].(string); ok {
		c.Query = query
	}
	return nil
}

func (c *SearchTemplatesCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *SearchTemplatesCommand) GetName() string {
	return "search"
}

func (c *SearchTemplatesCommand) GetDescription() string {
	return "Search template titles (case-insensitive substring, at least 2 characters)"
}

func (c *SearchTemplatesCommand) Execute(ctx context.Context) (*CommandResult, error) {
	results := c.service.SearchTemplates(c.Query)
	return &CommandResult{
		Success: true,
		Data:    results,
		Message: fmt.Sprintf("Found %d templates matching '%s'", len(results), c.Query),
	}, nil
}
