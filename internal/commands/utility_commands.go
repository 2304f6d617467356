// Package commands/utility_commands implements the editor support commands.
//
// COMMAND IMPLEMENTATIONS:
// - CompletionsCommand: the completion list, with the widget's numeric kinds
// - ResolveDocsCommand: documentation URL for a template, selection or script
// - LanguageCommand: grammar, language configuration and editor options
// - LayoutCommand: responsive layout for a viewport size
// - HealthCheckCommand: service status for monitoring
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dpshade/kubejs-editor/internal/completion"
	"github.com/dpshade/kubejs-editor/internal/models"
	"github.com/dpshade/kubejs-editor/internal/service"
)

// CompletionView is a completion item as sent to the web editor
type CompletionView struct {
	models.CompletionItem
	MonacoKind int `json:"monacoKind"`
}

// CompletionsCommand returns the full completion list
type CompletionsCommand struct {
	service *service.Service
}

func (c *CompletionsCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *CompletionsCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *CompletionsCommand) GetName() string {
	return "completions"
}

func (c *CompletionsCommand) GetDescription() string {
	return "List every completion item in adapter order"
}

func (c *CompletionsCommand) Execute(ctx context.Context) (*CommandResult, error) {
	items := c.service.Completions()
	views := make([]CompletionView, len(items))
	for i, item := range items {
		views[i] = CompletionView{CompletionItem: item, MonacoKind: completion.MonacoKind(item.Kind)}
	}
	return &CommandResult{
		Success: true,
		Data:    views,
		Message: fmt.Sprintf("Found %d completions", len(views)),
	}, nil
}

// ResolveDocsCommand picks a documentation URL
type ResolveDocsCommand struct {
	service   *service.Service
	Template  string
	Selection string
	Content   string
}

func (c *ResolveDocsCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *ResolveDocsCommand) SetParameters(params map[string]interface{}) error {
	if template, ok := params["template"].(string); ok {
		c.Template = template
	}
	if selection, ok := params["selection"].(string); ok {
		c.Selection = selection
	}
	if content, ok := params["content"].(string); ok {
		c.Content = content
	}
	return nil
}

func (c *ResolveDocsCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *ResolveDocsCommand) GetName() string {
	return "docs"
}

func (c *ResolveDocsCommand) GetDescription() string {
	return "Resolve the documentation URL for a template, selection or script"
}

func (c *ResolveDocsCommand) Execute(ctx context.Context) (*CommandResult, error) {
	url := c.service.ResolveDocs(c.Template, c.Selection, c.Content)
	return &CommandResult{
		Success: true,
		Data:    map[string]string{"url": url},
		Message: url,
	}, nil
}

// LanguageCommand returns what the web editor registers for the language
type LanguageCommand struct {
	service *service.Service
}

func (c *LanguageCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *LanguageCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *LanguageCommand) GetName() string {
	return "language"
}

func (c *LanguageCommand) GetDescription() string {
	return "Get the token grammar, language configuration and editor options"
}

func (c *LanguageCommand) Execute(ctx context.Context) (*CommandResult, error) {
	return &CommandResult{
		Success: true,
		Data:    c.service.Language(),
	}, nil
}

// LayoutCommand computes the responsive layout
type LayoutCommand struct {
	service *service.Service
	Width   float64
	Height  float64
}

func (c *LayoutCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *LayoutCommand) SetParameters(params map[string]interface{}) error {
	width, ok := params["width"].(float64)
	if !ok {
		return fmt.Errorf("width parameter is required")
	}
	height, ok := params["height"].(float64)
	if !ok {
		return fmt.Errorf("height parameter is required")
	}
	c.Width, c.Height = width, height
	return nil
}

func (c *LayoutCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *LayoutCommand) GetName() string {
	return "layout"
}

func (c *LayoutCommand) GetDescription() string {
	return "Compute the editor layout for a viewport size"
}

func (c *LayoutCommand) Execute(ctx context.Context) (*CommandResult, error) {
	return &CommandResult{
		Success: true,
		Data:    c.service.Layout(c.Width, c.Height),
	}, nil
}

// HealthCheckCommand checks system health
type HealthCheckCommand struct {
	service *service.Service
}

func (c *HealthCheckCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *HealthCheckCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

func (c *HealthCheckCommand) GetName() string {
	return "health"
}

func (c *HealthCheckCommand) GetDescription() string {
	return "Check system health and service status"
}

func (c *HealthCheckCommand) Execute(ctx context.Context) (*CommandResult, error) {
	healthData := map[string]interface{}{
		"status":    "healthy",
		"service":   "kubejs-editor",
		"templates": len(c.service.ListTemplates()),
		"overrides": len(c.service.Registry().Shadowed()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	return &CommandResult{
		Success: true,
		Data:    healthData,
		Message: "Service is healthy",
	}, nil
}
