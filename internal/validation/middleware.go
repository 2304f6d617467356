package validation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dpshade/kubejs-editor/internal/errors"
)

// maxBodyBytes bounds JSON and form bodies; scripts posted for docs lookup
// stay well below it.
const maxBodyBytes = 2 << 20

type validatedKey struct{}

// RequestValidator provides middleware for HTTP request validation
type RequestValidator struct {
	validator *Validator
}

// NewRequestValidator creates a new request validator middleware
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validator: NewValidator(),
	}
}

// ValidateRequest validates query, route and body parameters against
// schemaName. Handlers read the converted values with ValidatedData.
func (rv *RequestValidator) ValidateRequest(schemaName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := rv.ExtractRequestData(r)
			if err != nil {
				rv.writeValidationError(w, errors.GetAppError(err))
				return
			}

			result := rv.validator.Validate(schemaName, data)
			if !result.Valid {
				rv.writeValidationError(w, result.ToAppError())
				return
			}

			ctx := context.WithValue(r.Context(), validatedKey{}, result.GetValidatedData())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidatedData returns the parameters stored by ValidateRequest, or an
// empty map when the request was not validated.
func ValidatedData(r *http.Request) map[string]interface{} {
	if data, ok := r.Context().Value(validatedKey{}).(map[string]interface{}); ok {
		return data
	}
	return map[string]interface{}{}
}

// ExtractRequestData merges query parameters, chi route parameters and a JSON
// or form body into one map. Later sources win.
func (rv *RequestValidator) ExtractRequestData(r *http.Request) (map[string]interface{}, error) {
	data := make(map[string]interface{})

	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			data[key] = values[0]
		} else if len(values) > 1 {
			data[key] = values
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			data[key] = rctx.URLParams.Values[i]
		}
	}

	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		contentType := r.Header.Get("Content-Type")

		var body map[string]interface{}
		var err error
		switch {
		case strings.Contains(contentType, "application/json"):
			body, err = rv.extractJSONBody(r)
		case strings.Contains(contentType, "application/x-www-form-urlencoded"):
			body, err = rv.extractFormBody(r)
		}
		if err != nil {
			return nil, err
		}
		for key, value := range body {
			data[key] = value
		}
	}

	return data, nil
}

// extractJSONBody extracts data from JSON request body
func (rv *RequestValidator) extractJSONBody(r *http.Request) (map[string]interface{}, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.ValidationError("Failed to read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, errors.ValidationError("Request body too large")
	}

	if len(body) == 0 {
		return make(map[string]interface{}), nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.ValidationError("Invalid JSON in request body")
	}

	return data, nil
}

// extractFormBody extracts data from form-encoded request body
func (rv *RequestValidator) extractFormBody(r *http.Request) (map[string]interface{}, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, errors.ValidationError("Failed to parse form data")
	}

	data := make(map[string]interface{})
	for key, values := range r.PostForm {
		if len(values) == 1 {
			data[key] = values[0]
		} else if len(values) > 1 {
			data[key] = values
		}
	}

	return data, nil
}

// writeValidationError writes a validation error response
func (rv *RequestValidator) writeValidationError(w http.ResponseWriter, err *errors.AppError) {
	errorHandler := errors.NewHTTPErrorHandler(true)
	errorHandler.WriteHTTPError(w, err)
}

// SanitizeString removes null bytes and control characters, keeping newlines
// and tabs.
func SanitizeString(input string) string {
	cleaned := strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range cleaned {
		if r == '\n' || r == '\t' || r == '\r' || r >= 32 {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateIdentifier validates that a string is a valid template id
func ValidateIdentifier(id string) error {
	if id == "" {
		return errors.ValidationError("Identifier cannot be empty")
	}

	if len(id) > 200 {
		return errors.ValidationError("Identifier too long (max 200 characters)")
	}

	if !IdentifierPattern.MatchString(id) {
		return errors.ValidationError("Identifier contains invalid characters (only alphanumeric, hyphens, and underscores allowed)")
	}

	return nil
}

// GetValidator returns the underlying validator instance
func (rv *RequestValidator) GetValidator() *Validator {
	return rv.validator
}
