// Package validation provides centralized input validation and sanitization.
//
// SYSTEM ARCHITECTURE ROLE:
// This module validates every parameter map before it reaches a command, whether
// the map came from CLI flags, an HTTP request or a TUI action. Schemas declare
// field types, lengths, patterns and options; values are converted to their
// declared type on the way through.
//
// INTEGRATION POINTS:
// - internal/commands/types.go: CommandExecutor validates parameters using getValidationSchema()
// - internal/validation/middleware.go: RequestValidator validates HTTP requests before handlers run
// - internal/errors/errors.go: ValidationResult.ToAppError() converts failures to AppError format
//
// SCHEMAS:
// - list_templates, get_template, search_templates, resolve_docs, compute_layout, export_catalog
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dpshade/kubejs-editor/internal/errors"
)

// IdentifierPattern matches template ids.
var IdentifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Name      string
	Required  bool
	Type      string
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Options   []string
	Custom    func(interface{}) error
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid    bool                   `json:"valid"`
	Errors   []ValidationError      `json:"errors,omitempty"`
	Warnings []ValidationWarning    `json:"warnings,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationWarning represents a field validation warning
type ValidationWarning struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Schema represents a validation schema
type Schema struct {
	Name   string
	Fields map[string]FieldValidator
	Rules  []func(map[string]interface{}) error
}

// Validator provides centralized validation functionality
type Validator struct {
	schemas map[string]*Schema
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := &Validator{
		schemas: make(map[string]*Schema),
	}

	v.registerBuiltinSchemas()

	return v
}

// RegisterSchema registers a validation schema
func (v *Validator) RegisterSchema(schema *Schema) {
	v.schemas[schema.Name] = schema
}

// HasSchema reports whether a schema is registered under name
func (v *Validator) HasSchema(name string) bool {
	_, ok := v.schemas[name]
	return ok
}

// Validate validates data against a schema. Unknown keys are dropped from
// the validated data with a warning.
func (v *Validator) Validate(schemaName string, data map[string]interface{}) *ValidationResult {
	schema, exists := v.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "schema",
				Code:    "SCHEMA_NOT_FOUND",
				Message: fmt.Sprintf("Validation schema '%s' not found", schemaName),
			}},
		}
	}

	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
		Data:     make(map[string]interface{}),
	}

	// Fields are checked in name order so the first error is stable
	names := make([]string, 0, len(schema.Fields))
	for name := range schema.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, fieldName := range names {
		v.validateField(fieldName, schema.Fields[fieldName], data, result)
	}

	extra := make([]string, 0)
	for key := range data {
		if _, known := schema.Fields[key]; !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   key,
			Message: fmt.Sprintf("Unknown field '%s' ignored", key),
			Value:   data[key],
		})
	}

	for _, rule := range schema.Rules {
		if err := rule(result.Data); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "schema",
				Code:    "SCHEMA_RULE_VIOLATION",
				Message: err.Error(),
			})
		}
	}

	return result
}

// validateField validates a single field
func (v *Validator) validateField(fieldName string, validator FieldValidator, data map[string]interface{}, result *ValidationResult) {
	value, exists := data[fieldName]

	if validator.Required && (!exists || value == nil || value == "") {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "REQUIRED_FIELD_MISSING",
			Message: fmt.Sprintf("Field '%s' is required", fieldName),
		})
		return
	}

	if !exists || value == nil {
		return
	}

	convertedValue, err := v.validateAndConvertType(fieldName, validator.Type, value)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldName,
			Code:    "INVALID_TYPE",
			Message: err.Error(),
			Value:   value,
		})
		return
	}

	result.Data[fieldName] = convertedValue

	if validator.Type == "string" {
		strValue, _ := convertedValue.(string)
		// Optional empty strings mean "not given"
		if strValue == "" && !validator.Required {
			return
		}

		if validator.MinLength > 0 && len(strValue) < validator.MinLength {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Code:    "MIN_LENGTH_VIOLATION",
				Message: fmt.Sprintf("Field '%s' must be at least %d characters long", fieldName, validator.MinLength),
				Value:   strValue,
			})
		}

		if validator.MaxLength > 0 && len(strValue) > validator.MaxLength {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Code:    "MAX_LENGTH_VIOLATION",
				Message: fmt.Sprintf("Field '%s' must be at most %d characters long", fieldName, validator.MaxLength),
			})
		}

		if validator.Pattern != nil && !validator.Pattern.MatchString(strValue) {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Code:    "PATTERN_MISMATCH",
				Message: fmt.Sprintf("Field '%s' does not match required pattern", fieldName),
				Value:   strValue,
			})
		}

		if len(validator.Options) > 0 && !containsString(validator.Options, strValue) {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Code:    "INVALID_OPTION",
				Message: fmt.Sprintf("Field '%s' must be one of: %s", fieldName, strings.Join(validator.Options, ", ")),
				Value:   strValue,
			})
		}
	}

	if validator.Custom != nil {
		if err := validator.Custom(convertedValue); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Code:    "CUSTOM_VALIDATION_FAILED",
				Message: fmt.Sprintf("Field '%s': %s", fieldName, err.Error()),
				Value:   convertedValue,
			})
		}
	}
}

// validateAndConvertType validates and converts value to the specified type
func (v *Validator) validateAndConvertType(fieldName, expectedType string, value interface{}) (interface{}, error) {
	switch expectedType {
	case "string":
		switch val := value.(type) {
		case string:
			return val, nil
		case []string:
			if len(val) > 0 {
				return val[0], nil
			}
			return "", nil
		}
		return fmt.Sprintf("%v", value), nil

	case "int":
		switch val := value.(type) {
		case int:
			return val, nil
		case float64:
			return int(val), nil
		case string:
			if intVal, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				return intVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be an integer", fieldName)

	case "float":
		switch val := value.(type) {
		case float64:
			return val, nil
		case int:
			return float64(val), nil
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				return f, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be a number", fieldName)

	case "bool":
		switch val := value.(type) {
		case bool:
			return val, nil
		case string:
			if boolVal, err := strconv.ParseBool(val); err == nil {
				return boolVal, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be a boolean", fieldName)

	default:
		return value, nil
	}
}

func nonNegative(value interface{}) error {
	if f, ok := value.(float64); ok && f < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// registerBuiltinSchemas registers the command parameter schemas
func (v *Validator) registerBuiltinSchemas() {
	v.RegisterSchema(&Schema{
		Name: "list_templates",
		Fields: map[string]FieldValidator{
			"category": {
				Name:      "category",
				Type:      "string",
				MaxLength: 100,
			},
			"format": {
				Name:    "format",
				Type:    "string",
				Options: []string{"json", "table", "ids"},
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "get_template",
		Fields: map[string]FieldValidator{
			"id": {
				Name:      "id",
				Type:      "string",
				Required:  true,
				MinLength: 1,
				MaxLength: 200,
				Pattern:   IdentifierPattern,
			},
		},
	})

	// Short and empty queries are valid; they simply match nothing
	v.RegisterSchema(&Schema{
		Name: "search_templates",
		Fields: map[string]FieldValidator{
			"query": {
				Name:      "query",
				Type:      "string",
				MaxLength: 200,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "resolve_docs",
		Fields: map[string]FieldValidator{
			"template": {
				Name:      "template",
				Type:      "string",
				MaxLength: 200,
				Pattern:   IdentifierPattern,
			},
			"selection": {
				Name:      "selection",
				Type:      "string",
				MaxLength: 200,
				Pattern:   IdentifierPattern,
			},
			"content": {
				Name:      "content",
				Type:      "string",
				MaxLength: 1 << 20,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "compute_layout",
		Fields: map[string]FieldValidator{
			"width": {
				Name:     "width",
				Type:     "float",
				Required: true,
				Custom:   nonNegative,
			},
			"height": {
				Name:     "height",
				Type:     "float",
				Required: true,
				Custom:   nonNegative,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "export_catalog",
		Fields: map[string]FieldValidator{
			"format": {
				Name:     "format",
				Type:     "string",
				Required: true,
				Options:  []string{"json", "yaml", "xlsx"},
			},
		},
	})
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ToAppError converts validation result to AppError
func (result *ValidationResult) ToAppError() *errors.AppError {
	if result.Valid {
		return nil
	}

	if len(result.Errors) == 0 {
		return errors.ValidationError("Validation failed")
	}

	firstError := result.Errors[0]
	appErr := errors.ValidationError(firstError.Message)

	var details []string
	for _, validationErr := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %s", validationErr.Field, validationErr.Message))
	}

	appErr.WithDetails(strings.Join(details, "; "))
	appErr.WithContext("validation_errors", result.Errors)
	if len(result.Warnings) > 0 {
		appErr.WithContext("validation_warnings", result.Warnings)
	}

	return appErr
}

// GetValidatedData returns the validated and converted data
func (result *ValidationResult) GetValidatedData() map[string]interface{} {
	if !result.Valid {
		return nil
	}
	return result.Data
}
