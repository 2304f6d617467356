// Package commands implements the unified command execution system for kubejs-editor.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the coordination layer between the user interfaces (CLI, HTTP)
// and the service layer. Each catalog query is a Command; interfaces build a
// parameter map, the executor validates it against a schema, runs the command
// and hands back a CommandResult that every interface formats the same way.
//
// INTEGRATION POINTS:
// - internal/cli/cli.go: headless catalog commands run through CommandExecutor
// - internal/api/server.go: every REST endpoint calls executor.Execute()
// - internal/service/service.go: commands delegate to service.Service
// - internal/validation/validator.go: getValidationSchema() maps commands to schemas
// - internal/errors/errors.go: failures become ErrorInfo via AppError conversion
//
// COMMAND FLOW:
// 1. Interface converts input to a parameter map
// 2. CommandExecutor validates the map against the command's schema
// 3. A fresh command instance receives the service and validated parameters
// 4. The command runs and returns a CommandResult
package commands

import (
	"context"
	"sort"

	"github.com/dpshade/kubejs-editor/internal/errors"
	"github.com/dpshade/kubejs-editor/internal/service"
	"github.com/dpshade/kubejs-editor/internal/validation"
)

// CommandResult represents the result of executing a command
type CommandResult struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Success bool        `json:"success"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo provides structured error information
type ErrorInfo struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	Category string `json:"category,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// Command represents a unified command interface
type Command interface {
	Execute(ctx context.Context) (*CommandResult, error)
	Validate() error
	GetName() string
	GetDescription() string
}

// ParameterizedCommand interface for commands that accept parameters
type ParameterizedCommand interface {
	SetParameters(params map[string]interface{}) error
}

// ServiceAwareCommand interface for commands that need service access
type ServiceAwareCommand interface {
	SetService(svc *service.Service)
}

// CommandRegistry manages available commands
type CommandRegistry struct {
	commands map[string]func() Command
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]func() Command),
	}
}

// Register adds a command factory to the registry
func (r *CommandRegistry) Register(name string, factory func() Command) {
	r.commands[name] = factory
}

// Get retrieves a command factory by name
func (r *CommandRegistry) Get(name string) (func() Command, bool) {
	factory, exists := r.commands[name]
	return factory, exists
}

// List returns all available command names, sorted
func (r *CommandRegistry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommandExecutor provides a unified way to execute commands
type CommandExecutor struct {
	service   *service.Service
	registry  *CommandRegistry
	validator *validation.Validator
}

// NewCommandExecutor creates a new command executor
func NewCommandExecutor(svc *service.Service) *CommandExecutor {
	executor := &CommandExecutor{
		service:   svc,
		registry:  NewCommandRegistry(),
		validator: validation.NewValidator(),
	}

	executor.registerCommands()

	return executor
}

// Commands lists registered command names with their descriptions
func (e *CommandExecutor) Commands() map[string]string {
	out := make(map[string]string)
	for _, name := range e.registry.List() {
		factory, _ := e.registry.Get(name)
		out[name] = factory().GetDescription()
	}
	return out
}

// Execute runs a command by name with the given parameters. Failures are
// reported in the result; the error return is reserved for future use.
func (e *CommandExecutor) Execute(ctx context.Context, commandName string, params map[string]interface{}) (*CommandResult, error) {
	factory, exists := e.registry.Get(commandName)
	if !exists {
		return failure(errors.CommandNotFoundError(commandName)), nil
	}

	if validationSchema := e.getValidationSchema(commandName); validationSchema != "" {
		if params == nil {
			params = make(map[string]interface{})
		}

		validationResult := e.validator.Validate(validationSchema, params)
		if !validationResult.Valid {
			return failure(validationResult.ToAppError()), nil
		}

		params = validationResult.GetValidatedData()
	}

	cmd := factory()

	if parameterized, ok := cmd.(ParameterizedCommand); ok {
		if err := parameterized.SetParameters(params); err != nil {
			return failure(errors.ValidationError(err.Error())), nil
		}
	}

	if err := cmd.Validate(); err != nil {
		return failure(errors.ValidationError(err.Error())), nil
	}

	if err := ctx.Err(); err != nil {
		return failure(errors.Wrap(err, errors.ErrCodeCommandFailed, "Command cancelled")), nil
	}

	result, err := cmd.Execute(ctx)
	if err != nil {
		return failure(errors.GetAppError(err)), nil
	}

	return result, nil
}

func failure(appErr *errors.AppError) *CommandResult {
	return &CommandResult{
		Success: false,
		Error: &ErrorInfo{
			Code:     string(appErr.Code),
			Message:  appErr.Message,
			Details:  appErr.Details,
			Category: string(appErr.Category),
			Severity: string(appErr.Severity),
		},
	}
}

// getValidationSchema returns the validation schema name for a command
func (e *CommandExecutor) getValidationSchema(commandName string) string {
	switch commandName {
	case "list":
		return "list_templates"
	case "get":
		return "get_template"
	case "search":
		return "search_templates"
	case "docs":
		return "resolve_docs"
	case "layout":
		return "compute_layout"
	default:
		return ""
	}
}

// registerCommands registers all available commands
func (e *CommandExecutor) registerCommands() {
	e.register("list", func() Command { return &ListTemplatesCommand{} })
	e.register("get", func() Command { return &GetTemplateCommand{} })
	e.register("categories", func() Command { return &ListCategoriesCommand{} })
	e.register("search", func() Command { return &SearchTemplatesCommand{} })
	e.register("completions", func() Command { return &CompletionsCommand{} })
	e.register("docs", func() Command { return &ResolveDocsCommand{} })
	e.register("language", func() Command { return &LanguageCommand{} })
	e.register("layout", func() Command { return &LayoutCommand{} })
	e.register("health", func() Command { return &HealthCheckCommand{} })
}

// register wraps factory so every instance is handed the service
func (e *CommandExecutor) register(name string, factory func() Command) {
	e.registry.Register(name, func() Command {
		cmd := factory()
		if serviceAware, ok := cmd.(ServiceAwareCommand); ok {
			serviceAware.SetService(e.service)
		}
		return cmd
	})
}
